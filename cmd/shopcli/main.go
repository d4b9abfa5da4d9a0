package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/kgomo/shopmate/pkg/shop"
)

// CLI for driving a cart session without the agent or MCP.
//
// Examples:
//
//	go run ./cmd/shopcli search --query "mouse gamin pro"
//	go run ./cmd/shopcli                      # interactive REPL
//
// One-shot mode runs a single command against a fresh session; the REPL
// keeps one session alive across commands, so the cart and search history
// carry over.
func main() {
	godotenv.Load()

	session := shop.NewSession(nil)

	if len(os.Args) > 1 {
		if !runCommand(session, os.Args[1], os.Args[2:]) {
			usage()
			os.Exit(2)
		}
		return
	}

	repl(session)
}

func usage() {
	_, _ = fmt.Fprintln(os.Stderr, "usage:")
	_, _ = fmt.Fprintln(os.Stderr, "  shopcli search --query <name>")
	_, _ = fmt.Fprintln(os.Stderr, "  shopcli add --product <name> [--quantity <n>]")
	_, _ = fmt.Fprintln(os.Stderr, "  shopcli remove --product <name> [--quantity <n>]")
	_, _ = fmt.Fprintln(os.Stderr, "  shopcli view")
	_, _ = fmt.Fprintln(os.Stderr, "  shopcli total")
	_, _ = fmt.Fprintln(os.Stderr, "  shopcli discount --code <code>")
	_, _ = fmt.Fprintln(os.Stderr, "  shopcli clear")
	_, _ = fmt.Fprintln(os.Stderr, "  shopcli recommend [--category <name>]")
	_, _ = fmt.Fprintln(os.Stderr, "  shopcli history")
	_, _ = fmt.Fprintln(os.Stderr, "  shopcli help | quit   (REPL only)")
}

func repl(session *shop.Session) {
	fmt.Fprintln(os.Stderr, "shopmate cli - type 'help' for commands, 'quit' to exit")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Fprint(os.Stderr, "> ")
		if !scanner.Scan() {
			break
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "quit", "exit":
			return
		case "help":
			usage()
		default:
			if !runCommand(session, fields[0], fields[1:]) {
				usage()
			}
		}
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "read error: %v\n", err)
		os.Exit(1)
	}
}

// runCommand dispatches one command against the session. It returns false on
// an unknown command so callers can print usage.
func runCommand(session *shop.Session, name string, args []string) bool {
	switch name {
	case "search":
		fs := flag.NewFlagSet("search", flag.ExitOnError)
		query := fs.String("query", "", "product name, exact or approximate")
		_ = fs.Parse(args)
		emit(session.SearchProduct(*query))
	case "add":
		fs := flag.NewFlagSet("add", flag.ExitOnError)
		product := fs.String("product", "", "product name, exact or approximate")
		quantity := fs.Int("quantity", 1, "units to add")
		_ = fs.Parse(args)
		emit(session.AddToCart(*product, *quantity))
	case "remove":
		fs := flag.NewFlagSet("remove", flag.ExitOnError)
		product := fs.String("product", "", "product name, exact or approximate")
		quantity := fs.Int("quantity", 0, "units to remove (omit to remove the whole line)")
		_ = fs.Parse(args)
		var qty *int
		if *quantity != 0 {
			qty = quantity
		}
		emit(session.RemoveFromCart(*product, qty))
	case "view":
		emit(session.ViewCart())
	case "total":
		emit(session.CartTotal())
	case "discount":
		fs := flag.NewFlagSet("discount", flag.ExitOnError)
		code := fs.String("code", "", "discount code (WELCOME10, SAVE20, VIP30)")
		_ = fs.Parse(args)
		emit(session.ApplyDiscount(*code))
	case "clear":
		emit(session.ClearCart())
	case "recommend":
		fs := flag.NewFlagSet("recommend", flag.ExitOnError)
		category := fs.String("category", "", "category filter (empty for whole catalog)")
		_ = fs.Parse(args)
		emit(session.Recommend(*category))
	case "history":
		emit(session.RecentSearches())
	default:
		return false
	}
	return true
}

func emit(result any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
