package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/kgomo/shopmate/pkg/shop"
)

func main() {
	// Load environment variables from .env file
	_ = godotenv.Load()

	// One shared cart session for the whole server. Every connected client
	// talks to the same cart, so tool calls are serialized behind a mutex.
	store := &sessionStore{session: shop.NewSession(nil)}

	s := &server{
		tools: []tool{
			searchProductTool(store),
			addToCartTool(store),
			viewCartTool(store),
			applyDiscountTool(store),
			removeFromCartTool(store),
			clearCartTool(store),
			cartTotalTool(store),
			recommendProductsTool(store),
			searchHistoryTool(store),
		},
		clients: make(map[string]*sseClient),
		mu:      &sync.RWMutex{},
	}

	// SSE endpoint for MCP streaming
	http.HandleFunc("/sse", func(w http.ResponseWriter, r *http.Request) {
		// Set SSE headers
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Cache-Control")

		clientID := uuid.NewString()

		// Create SSE client
		client := &sseClient{
			id:     clientID,
			writer: w,
			ch:     make(chan jsonrpcResponse, 10),
		}

		s.mu.Lock()
		s.clients[clientID] = client
		s.mu.Unlock()

		defer func() {
			s.mu.Lock()
			delete(s.clients, clientID)
			s.mu.Unlock()
			close(client.ch)
		}()

		// Handle initial request from query params or body
		if r.Method == http.MethodPost {
			body, err := io.ReadAll(r.Body)
			if err == nil && len(body) > 0 {
				var msg jsonrpcRequest
				if err := json.Unmarshal(body, &msg); err == nil {
					go s.handleRequest(clientID, r.Context(), msg)
				}
			}
		}

		// Stream responses
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming not supported", http.StatusInternalServerError)
			return
		}

		for {
			select {
			case resp, ok := <-client.ch:
				if !ok {
					return
				}
				if err := s.writeSSE(w, resp); err != nil {
					return
				}
				flusher.Flush()
			case <-r.Context().Done():
				return
			case <-time.After(30 * time.Second):
				// Send keepalive
				if _, err := w.Write([]byte(": keepalive\n\n")); err != nil {
					return
				}
				flusher.Flush()
			}
		}
	})

	// POST endpoint for sending requests (alternative to query params)
	http.HandleFunc("/rpc", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		dec := json.NewDecoder(r.Body)
		var msg jsonrpcRequest
		if err := dec.Decode(&msg); err != nil {
			http.Error(w, "invalid JSON-RPC request", http.StatusBadRequest)
			return
		}

		// Get client ID from header or generate one
		clientID := r.Header.Get("X-Client-ID")
		if clientID == "" {
			clientID = uuid.NewString()
		}

		s.mu.RLock()
		_, exists := s.clients[clientID]
		s.mu.RUnlock()

		if exists {
			go s.handleRequest(clientID, r.Context(), msg)
			w.WriteHeader(http.StatusAccepted)
			_, _ = w.Write([]byte(`{"status":"accepted"}`))
		} else {
			// No SSE client, respond directly
			resp := s.handleDirect(r.Context(), msg)
			w.Header().Set("Content-Type", "application/json")
			enc := json.NewEncoder(w)
			enc.SetEscapeHTML(false)
			_ = enc.Encode(resp)
		}
	})

	// Simple health endpoint
	http.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	addr := os.Getenv("MCP_SERVER_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	fmt.Fprintf(os.Stderr, "shopmate-mcp SSE server listening on %s\n", addr)
	fmt.Fprintf(os.Stderr, "SSE endpoint: http://localhost%s/sse\n", addr)
	if err := http.ListenAndServe(addr, nil); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

type server struct {
	tools   []tool
	clients map[string]*sseClient
	mu      *sync.RWMutex
}

type sseClient struct {
	id     string
	writer http.ResponseWriter
	ch     chan jsonrpcResponse
}

func (s *server) handleRequest(clientID string, ctx context.Context, req jsonrpcRequest) {
	var resp jsonrpcResponse
	switch req.Method {
	case "initialize":
		resp = s.handleInitialize(req)
	case "tools/list":
		resp = s.handleToolsList(req)
	case "tools/call":
		resp = s.handleToolsCall(ctx, req)
	default:
		resp = s.replyError(req.ID, -32601, "Method not found", map[string]any{
			"method": req.Method,
		})
	}

	s.mu.RLock()
	client, exists := s.clients[clientID]
	s.mu.RUnlock()

	if exists {
		select {
		case client.ch <- resp:
		default:
			// Channel full, drop message
		}
	}
}

func (s *server) handleDirect(ctx context.Context, req jsonrpcRequest) jsonrpcResponse {
	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	default:
		return s.replyError(req.ID, -32601, "Method not found", map[string]any{
			"method": req.Method,
		})
	}
}

func (s *server) writeSSE(w http.ResponseWriter, resp jsonrpcResponse) error {
	b, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", string(b))
	return err
}

func (s *server) handleInitialize(req jsonrpcRequest) jsonrpcResponse {
	// MCP initialize response follows "capabilities" format used by clients.
	// Keep conservative: just tools.

	result := map[string]any{
		"protocolVersion": "2024-11-05",
		"serverInfo": map[string]any{
			"name":    "shopmate-mcp",
			"version": "0.1.0",
		},
		"capabilities": map[string]any{
			"tools": map[string]any{},
		},
	}
	return s.replyResult(req.ID, result)
}

func (s *server) handleToolsList(req jsonrpcRequest) jsonrpcResponse {
	list := make([]map[string]any, 0, len(s.tools))
	for _, t := range s.tools {
		list = append(list, map[string]any{
			"name":        t.Name,
			"description": t.Description,
			"inputSchema": t.InputSchema,
		})
	}
	return s.replyResult(req.ID, map[string]any{
		"tools": list,
	})
}

func (s *server) handleToolsCall(ctx context.Context, req jsonrpcRequest) jsonrpcResponse {
	var p toolsCallParams
	if err := json.Unmarshal(req.Params, &p); err != nil {
		return s.replyError(req.ID, -32602, "Invalid params", err.Error())
	}

	// Log tool call with parameters
	logToolCall(toolCallLogFile, toolCallLogEntry{
		Time:      time.Now().UTC(),
		RequestID: req.ID,
		Tool:      p.Name,
		Arguments: p.Arguments,
	})

	var t *tool
	for i := range s.tools {
		if s.tools[i].Name == p.Name {
			t = &s.tools[i]
			break
		}
	}
	if t == nil {
		return s.replyError(req.ID, -32602, "Invalid params", map[string]any{
			"reason": "unknown tool",
			"name":   p.Name,
		})
	}

	content, err := t.Call(ctx, p.Arguments)
	if err != nil {
		// Log tool error output
		logToolOutput(toolOutputLogFile, toolOutputLogEntry{
			Time:      time.Now().UTC(),
			RequestID: req.ID,
			Tool:      p.Name,
			Error:     err.Error(),
		})
		return s.replyError(req.ID, 1, "Tool execution error", err.Error())
	}

	// Log successful tool output
	logToolOutput(toolOutputLogFile, toolOutputLogEntry{
		Time:      time.Now().UTC(),
		RequestID: req.ID,
		Tool:      p.Name,
		Content:   content,
	})

	// MCP tool result uses `content` array with typed items.
	return s.replyResult(req.ID, map[string]any{
		"content": content,
	})
}

func (s *server) replyResult(id json.RawMessage, result any) jsonrpcResponse {
	return jsonrpcResponse{
		JSONRPC: "2.0",
		ID:      id,
		Result:  mustMarshalRaw(result),
	}
}

func (s *server) replyError(id json.RawMessage, code int, message string, data any) jsonrpcResponse {
	return jsonrpcResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &jsonrpcError{
			Code:    code,
			Message: message,
			Data:    mustMarshalRaw(data),
		},
	}
}

// --- JSON-RPC types ---

type jsonrpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type jsonrpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *jsonrpcError   `json:"error,omitempty"`
}

type jsonrpcError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func mustMarshalRaw(v any) json.RawMessage {
	if v == nil {
		return json.RawMessage("null")
	}
	b, err := json.Marshal(v)
	if err != nil {
		// In a server context, panic is acceptable here because it indicates a programmer error.
		panic(err)
	}
	return json.RawMessage(b)
}

// --- Tools ---

// ContentItem is a typed item in an MCP tool result's content array.
type ContentItem struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type tool struct {
	Name        string
	Description string
	InputSchema map[string]any
	Call        func(ctx context.Context, args map[string]any) ([]ContentItem, error)
}

type toolsCallParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// sessionStore guards the shared cart session. MCP requests can arrive
// concurrently over SSE and /rpc, the session itself is not safe for that.
type sessionStore struct {
	mu      sync.Mutex
	session *shop.Session
}

// do runs one cart operation under the lock and renders its result as the
// single text content item MCP expects.
func (st *sessionStore) do(op func(s *shop.Session) any) ([]ContentItem, error) {
	st.mu.Lock()
	result := op(st.session)
	st.mu.Unlock()

	b, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return []ContentItem{
		{
			Type: "text",
			Text: string(b),
		},
	}, nil
}

func asString(args map[string]any, key string) (string, bool) {
	v, ok := args[key]
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// asInt reads an integer argument. JSON numbers decode as float64, so both
// shapes are accepted.
func asInt(args map[string]any, key string) (int, bool) {
	v, ok := args[key]
	if !ok || v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	default:
		return 0, false
	}
}

func searchProductTool(st *sessionStore) tool {
	return tool{
		Name:        "search_product",
		Description: "Search the catalog for a product by name. Tolerates typos and partial names; on a miss it returns up to three similar products.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "Product name to look for (e.g. \"mouse gamin pro\").",
				},
			},
			"required":             []string{"query"},
			"additionalProperties": false,
		},
		Call: func(_ context.Context, args map[string]any) ([]ContentItem, error) {
			query, ok := asString(args, "query")
			if !ok {
				return nil, fmt.Errorf("missing required argument: query")
			}
			return st.do(func(s *shop.Session) any {
				return s.SearchProduct(query)
			})
		},
	}
}

func addToCartTool(st *sessionStore) tool {
	return tool{
		Name:        "add_to_cart",
		Description: "Add a quantity of a product to the cart. The product name is resolved with the same fuzzy matching as search_product.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"product": map[string]any{
					"type":        "string",
					"description": "Product name, exact or approximate.",
				},
				"quantity": map[string]any{
					"type":        "integer",
					"description": "Units to add (defaults to 1).",
					"minimum":     1,
				},
			},
			"required":             []string{"product"},
			"additionalProperties": false,
		},
		Call: func(_ context.Context, args map[string]any) ([]ContentItem, error) {
			product, ok := asString(args, "product")
			if !ok {
				return nil, fmt.Errorf("missing required argument: product")
			}
			quantity, ok := asInt(args, "quantity")
			if !ok {
				quantity = 1
			}
			return st.do(func(s *shop.Session) any {
				return s.AddToCart(product, quantity)
			})
		},
	}
}

func viewCartTool(st *sessionStore) tool {
	return tool{
		Name:        "view_cart",
		Description: "Show the cart's line items together with subtotal, discount, tax, shipping and total.",
		InputSchema: map[string]any{
			"type":                 "object",
			"properties":           map[string]any{},
			"additionalProperties": false,
		},
		Call: func(_ context.Context, _ map[string]any) ([]ContentItem, error) {
			return st.do(func(s *shop.Session) any {
				return s.ViewCart()
			})
		},
	}
}

func applyDiscountTool(st *sessionStore) tool {
	return tool{
		Name:        "apply_discount",
		Description: "Apply a discount code (WELCOME10, SAVE20 or VIP30) to the cart. The cart must not be empty.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"code": map[string]any{
					"type":        "string",
					"description": "Discount code, case-insensitive.",
				},
			},
			"required":             []string{"code"},
			"additionalProperties": false,
		},
		Call: func(_ context.Context, args map[string]any) ([]ContentItem, error) {
			code, ok := asString(args, "code")
			if !ok {
				return nil, fmt.Errorf("missing required argument: code")
			}
			return st.do(func(s *shop.Session) any {
				return s.ApplyDiscount(code)
			})
		},
	}
}

func removeFromCartTool(st *sessionStore) tool {
	return tool{
		Name:        "remove_from_cart",
		Description: "Remove a product from the cart. Without a quantity the whole line is removed; with a quantity only that many units are taken off.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"product": map[string]any{
					"type":        "string",
					"description": "Product name, exact or approximate.",
				},
				"quantity": map[string]any{
					"type":        "integer",
					"description": "Units to remove. Omit to remove the whole line.",
					"minimum":     1,
				},
			},
			"required":             []string{"product"},
			"additionalProperties": false,
		},
		Call: func(_ context.Context, args map[string]any) ([]ContentItem, error) {
			product, ok := asString(args, "product")
			if !ok {
				return nil, fmt.Errorf("missing required argument: product")
			}
			var quantity *int
			if n, ok := asInt(args, "quantity"); ok {
				quantity = &n
			}
			return st.do(func(s *shop.Session) any {
				return s.RemoveFromCart(product, quantity)
			})
		},
	}
}

func clearCartTool(st *sessionStore) tool {
	return tool{
		Name:        "clear_cart",
		Description: "Empty the cart and drop any applied discount code.",
		InputSchema: map[string]any{
			"type":                 "object",
			"properties":           map[string]any{},
			"additionalProperties": false,
		},
		Call: func(_ context.Context, _ map[string]any) ([]ContentItem, error) {
			return st.do(func(s *shop.Session) any {
				return s.ClearCart()
			})
		},
	}
}

func cartTotalTool(st *sessionStore) tool {
	return tool{
		Name:        "cart_total",
		Description: "Compute the cart's full price breakdown: subtotal, discount, 8% tax, shipping and grand total.",
		InputSchema: map[string]any{
			"type":                 "object",
			"properties":           map[string]any{},
			"additionalProperties": false,
		},
		Call: func(_ context.Context, _ map[string]any) ([]ContentItem, error) {
			return st.do(func(s *shop.Session) any {
				return s.CartTotal()
			})
		},
	}
}

func recommendProductsTool(st *sessionStore) tool {
	return tool{
		Name:        "recommend_products",
		Description: "Recommend up to three products ranked by rating and review count, optionally restricted to a category.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"category": map[string]any{
					"type":        "string",
					"description": "Category to filter by (e.g. \"Peripherals\"). Omit for the whole catalog.",
				},
			},
			"additionalProperties": false,
		},
		Call: func(_ context.Context, args map[string]any) ([]ContentItem, error) {
			category, _ := asString(args, "category")
			return st.do(func(s *shop.Session) any {
				return s.Recommend(category)
			})
		},
	}
}

func searchHistoryTool(st *sessionStore) tool {
	return tool{
		Name:        "search_history",
		Description: "Return the last five search queries of this session, oldest first.",
		InputSchema: map[string]any{
			"type":                 "object",
			"properties":           map[string]any{},
			"additionalProperties": false,
		},
		Call: func(_ context.Context, _ map[string]any) ([]ContentItem, error) {
			return st.do(func(s *shop.Session) any {
				return s.RecentSearches()
			})
		},
	}
}

// --- Logging helpers ---

const (
	toolCallLogFile   = "logs/tool_calls.log"
	toolOutputLogFile = "logs/tool_outputs.log"
)

var logMu sync.Mutex

type toolCallLogEntry struct {
	Time      time.Time       `json:"time"`
	RequestID json.RawMessage `json:"request_id,omitempty"`
	Tool      string          `json:"tool"`
	Arguments map[string]any  `json:"arguments"`
}

type toolOutputLogEntry struct {
	Time      time.Time       `json:"time"`
	RequestID json.RawMessage `json:"request_id,omitempty"`
	Tool      string          `json:"tool"`
	Content   []ContentItem   `json:"content,omitempty"`
	Error     string          `json:"error,omitempty"`
}

func logToolCall(filename string, entry toolCallLogEntry) {
	logJSONLine(filename, entry)
}

func logToolOutput(filename string, entry toolOutputLogEntry) {
	logJSONLine(filename, entry)
}

func logJSONLine(filename string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "log marshal error: %v\n", err)
		return
	}

	logMu.Lock()
	defer logMu.Unlock()

	f, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "log open error: %v\n", err)
		return
	}
	defer f.Close()

	if _, err := f.Write(append(b, '\n')); err != nil {
		fmt.Fprintf(os.Stderr, "log write error: %v\n", err)
	}
}
