package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/nlpodyssey/openai-agents-go/agents"
	"github.com/nlpodyssey/openai-agents-go/tracing"
	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/kgomo/shopmate/pkg/shop"
	"github.com/kgomo/shopmate/pkg/shoptools"
)

// Message represents a chat message
type Message struct {
	ID             int64     `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Role           string    `json:"role"` // "user" or "assistant"
	Content        string    `json:"content"`
	Timestamp      time.Time `json:"timestamp"`
	PhoneNumber    string    `json:"phone_number,omitempty"` // For Twilio integration
}

// MessageHistory stores messages using GORM with raw SQL queries
type MessageHistory struct {
	db      *gorm.DB
	mu      sync.RWMutex
	maxSize int
}

func NewMessageHistory(dbPath string, maxSize int) (*MessageHistory, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	schemaSQL := `
	CREATE TABLE IF NOT EXISTS conversations (
		id TEXT PRIMARY KEY,
		phone_number TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		conversation_id TEXT NOT NULL,
		role TEXT NOT NULL CHECK(role IN ('user', 'assistant')),
		content TEXT NOT NULL,
		phone_number TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (conversation_id) REFERENCES conversations(id)
	);

	CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages(conversation_id, created_at);
	`

	if err := db.Exec(schemaSQL).Error; err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &MessageHistory{
		db:      db,
		maxSize: maxSize,
	}, nil
}

func (mh *MessageHistory) Close() error {
	sqlDB, err := mh.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (mh *MessageHistory) AddMessage(conversationID string, msg Message) error {
	mh.mu.Lock()
	defer mh.mu.Unlock()

	// Raw SQL: Insert or update conversation using SQLite UPSERT syntax
	upsertConversation := `
		INSERT INTO conversations (id, phone_number, created_at, updated_at)
		VALUES (?, ?, datetime('now'), datetime('now'))
		ON CONFLICT(id) DO UPDATE SET updated_at = datetime('now')`

	if err := mh.db.Exec(upsertConversation, conversationID, msg.PhoneNumber).Error; err != nil {
		return fmt.Errorf("failed to upsert conversation: %w", err)
	}

	insertMessage := `
		INSERT INTO messages (conversation_id, role, content, phone_number, created_at)
		VALUES (?, ?, ?, ?, datetime('now'))`

	if err := mh.db.Exec(insertMessage, conversationID, msg.Role, msg.Content, msg.PhoneNumber).Error; err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}

	// Raw SQL: Keep only last maxSize messages for this conversation
	trimMessages := `
		DELETE FROM messages WHERE conversation_id = ? AND id NOT IN (
			SELECT id FROM messages
			WHERE conversation_id = ?
			ORDER BY created_at DESC
			LIMIT ?
		)`

	if err := mh.db.Exec(trimMessages, conversationID, conversationID, mh.maxSize).Error; err != nil {
		return fmt.Errorf("failed to trim messages: %w", err)
	}

	return nil
}

func (mh *MessageHistory) GetHistory(conversationID string) ([]Message, error) {
	mh.mu.RLock()
	defer mh.mu.RUnlock()

	query := `
		SELECT id, conversation_id, role, content, COALESCE(phone_number, ''), created_at
		FROM messages
		WHERE conversation_id = ?
		ORDER BY created_at ASC`

	rows, err := mh.db.Raw(query, conversationID).Rows()
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var msg Message
		var createdAt string
		err := rows.Scan(&msg.ID, &msg.ConversationID, &msg.Role, &msg.Content, &msg.PhoneNumber, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msg.Timestamp, _ = time.Parse("2006-01-02 15:04:05", createdAt)
		messages = append(messages, msg)
	}

	return messages, rows.Err()
}

func (mh *MessageHistory) GetHistoryAsContext(conversationID string) (string, error) {
	msgs, err := mh.GetHistory(conversationID)
	if err != nil {
		return "", err
	}

	if len(msgs) == 0 {
		return "", nil
	}

	var sb strings.Builder
	sb.WriteString("\n\n=== Recent Conversation History ===\n")
	for _, msg := range msgs {
		role := "User"
		if msg.Role == "assistant" {
			role = "Assistant"
		}
		sb.WriteString(fmt.Sprintf("%s: %s\n", role, msg.Content))
	}
	sb.WriteString("=== End of History ===\n")
	return sb.String(), nil
}

// sessionRegistry hands out one shop session per conversation. Sessions are
// in-memory only, so a restart empties every cart.
type sessionRegistry struct {
	mu       sync.Mutex
	bindings map[string]*shoptools.Binding
}

func newSessionRegistry() *sessionRegistry {
	return &sessionRegistry{
		bindings: make(map[string]*shoptools.Binding),
	}
}

func (r *sessionRegistry) get(conversationID string) *shoptools.Binding {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bindings[conversationID]
	if !ok {
		b = shoptools.Bind(shop.NewSession(nil))
		r.bindings[conversationID] = b
	}
	return b
}

// TwilioClient handles SMS sending via Twilio
type TwilioClient struct {
	client      *twilio.RestClient
	phoneNumber string
	configured  bool
}

// NewTwilioClient creates a new Twilio client from environment variables
func NewTwilioClient() *TwilioClient {
	accountSID := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")
	phoneNumber := os.Getenv("TWILIO_PHONE_NUMBER")

	if accountSID == "" || authToken == "" || phoneNumber == "" {
		return &TwilioClient{
			configured: false,
		}
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})

	return &TwilioClient{
		client:      client,
		phoneNumber: phoneNumber,
		configured:  true,
	}
}

// IsConfigured returns true if the client is properly configured
func (t *TwilioClient) IsConfigured() bool {
	return t.configured
}

// SendSMS sends an SMS message to the specified phone number
func (t *TwilioClient) SendSMS(toPhoneNumber, message string) error {
	if !t.configured {
		return fmt.Errorf("twilio client not configured")
	}

	toPhoneNumber = formatPhoneNumber(toPhoneNumber)
	fromPhoneNumber := formatPhoneNumber(t.phoneNumber)

	// Truncate message if exceeds Twilio limit (1600 chars)
	const maxLength = 1600
	if len(message) > maxLength {
		fmt.Fprintf(os.Stderr, "[Twilio] Warning: Message exceeds %d characters, truncating...\n", maxLength)
		message = message[:maxLength-3] + "..."
	}

	fmt.Fprintf(os.Stderr, "[Twilio] Sending SMS from %s to %s (length: %d)\n", fromPhoneNumber, toPhoneNumber, len(message))

	params := &openapi.CreateMessageParams{
		To:   &toPhoneNumber,
		From: &fromPhoneNumber,
		Body: &message,
	}

	_, err := t.client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("failed to send SMS: %w", err)
	}

	return nil
}

// formatPhoneNumber ensures phone number has proper E.164 format (+ prefix)
func formatPhoneNumber(phone string) string {
	phone = strings.TrimSpace(phone)
	var result strings.Builder
	for _, char := range phone {
		if char >= '0' && char <= '9' || char == '+' {
			result.WriteRune(char)
		}
	}
	phone = result.String()

	if !strings.HasPrefix(phone, "+") {
		phone = "+" + phone
	}

	if !strings.HasPrefix(phone, "whatsapp:") {
		phone = "whatsapp:" + phone
	}

	return phone
}

// chatRequest is the payload accepted by the /chat endpoint.
type chatRequest struct {
	Prompt string `json:"prompt"`
}

// chatResponse is the JSON shape returned by the /chat endpoint.
type chatResponse struct {
	Output string `json:"output"`
}

func main() {
	addr := getEnv("CHAT_SERVER_ADDR", ":8090")

	godotenv.Load()

	// Disable OpenAI tracing to prevent console spam
	tracing.SetTracingDisabled(true)

	// Initialize message history with SQLite (stores last 10 messages per conversation)
	dbPath := getEnv("CHAT_DB_PATH", "./chat_history.db")
	messageHistory, err := NewMessageHistory(dbPath, 10)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize database: %v\n", err)
		os.Exit(1)
	}
	defer messageHistory.Close()

	twilioClient := NewTwilioClient()
	if twilioClient.IsConfigured() {
		fmt.Fprintf(os.Stderr, "Twilio client initialized\n")
	} else {
		fmt.Fprintf(os.Stderr, "Warning: Twilio not configured (set TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN, TWILIO_PHONE_NUMBER)\n")
	}

	sessions := newSessionRegistry()

	r := chi.NewRouter()

	// Simple health check.
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Twilio webhook endpoint for receiving SMS messages
	r.Post("/twilio/webhook", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		from := r.FormValue("From")
		body := r.FormValue("Body")

		if from == "" || body == "" {
			http.Error(w, "Missing From or Body", http.StatusBadRequest)
			return
		}

		fromFormatted := formatPhoneNumber(from)
		fmt.Fprintf(os.Stderr, "[Twilio] Received message from %s: %s\n", fromFormatted, body)

		if err := messageHistory.AddMessage(fromFormatted, Message{
			Role:        "user",
			Content:     body,
			Timestamp:   time.Now(),
			PhoneNumber: fromFormatted,
		}); err != nil {
			fmt.Fprintf(os.Stderr, "[Twilio] Failed to store user message: %v\n", err)
		}

		// The phone number doubles as the conversation (and cart) id.
		response := runAssistant(r.Context(), messageHistory, sessions.get(fromFormatted), fromFormatted, body)

		if response != "" {
			if err := messageHistory.AddMessage(fromFormatted, Message{
				Role:        "assistant",
				Content:     response,
				Timestamp:   time.Now(),
				PhoneNumber: fromFormatted,
			}); err != nil {
				fmt.Fprintf(os.Stderr, "[Twilio] Failed to store assistant message: %v\n", err)
			}

			go func() {
				if err := twilioClient.SendSMS(fromFormatted, response); err != nil {
					fmt.Fprintf(os.Stderr, "[Twilio] Failed to send SMS: %v\n", err)
				}
			}()
		}

		w.WriteHeader(http.StatusOK)
	})

	// Main chat endpoint with per-conversation cart sessions.
	r.Post("/chat", func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid JSON body", http.StatusBadRequest)
			return
		}
		req.Prompt = strings.TrimSpace(req.Prompt)
		if req.Prompt == "" {
			http.Error(w, "prompt is required", http.StatusBadRequest)
			return
		}

		// Get session ID from header (for conversation tracking)
		sessionID := r.Header.Get("X-Session-ID")
		if sessionID == "" {
			sessionID = "default"
		}

		if err := messageHistory.AddMessage(sessionID, Message{
			Role:      "user",
			Content:   req.Prompt,
			Timestamp: time.Now(),
		}); err != nil {
			fmt.Fprintf(os.Stderr, "[Chat] Failed to store user message: %v\n", err)
		}

		response := runAssistant(r.Context(), messageHistory, sessions.get(sessionID), sessionID, req.Prompt)

		if err := messageHistory.AddMessage(sessionID, Message{
			Role:      "assistant",
			Content:   response,
			Timestamp: time.Now(),
		}); err != nil {
			fmt.Fprintf(os.Stderr, "[Chat] Failed to store assistant message: %v\n", err)
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(chatResponse{Output: response}); err != nil {
			http.Error(w, "failed to encode response", http.StatusInternalServerError)
			return
		}
	})

	fmt.Fprintf(os.Stderr, "chat server listening on %s\n", addr)
	fmt.Fprintf(os.Stderr, "Twilio webhook: http://localhost%s/twilio/webhook\n", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		fmt.Fprintf(os.Stderr, "chat server error: %v\n", err)
		os.Exit(1)
	}
}

// runAssistant builds the shopping assistant over the conversation's cart
// session and runs it against the prompt plus recent history.
func runAssistant(ctx context.Context, history *MessageHistory, binding *shoptools.Binding, conversationID, prompt string) string {
	conversationContext, err := history.GetHistoryAsContext(conversationID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[Chat] Failed to get history: %v\n", err)
		conversationContext = ""
	}

	promptWithContext := prompt
	if conversationContext != "" {
		promptWithContext = prompt + conversationContext
	}

	agent := agents.New("ShoppingAssistant").
		WithInstructions(baseInstructions()).
		WithModel("gpt-4o").
		WithTools(
			shoptools.SearchProductTool(binding),
			shoptools.AddToCartTool(binding),
			shoptools.ViewCartTool(binding),
			shoptools.ApplyDiscountTool(binding),
			shoptools.RemoveFromCartTool(binding),
			shoptools.ClearCartTool(binding),
			shoptools.CartTotalTool(binding),
			shoptools.RecommendTool(binding),
			shoptools.SearchHistoryTool(binding),
		)

	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	result, err := agents.Run(ctx, agent, promptWithContext)
	if err != nil {
		return fmt.Sprintf("Sorry, I encountered an error: %v", err)
	}

	return result.FinalOutput.(string)
}

// baseInstructions is the system prompt for the shopping assistant.
func baseInstructions() string {
	return strings.TrimSpace(`
You are a professional, friendly shopping assistant. Your goal is to help users:
1. Find products with flexible search (they don't need to type exact names)
2. Manage their shopping cart efficiently
3. Apply discounts and calculate totals with tax and shipping
4. Get personalized recommendations

Special features:
- Smart search: products are found even when the name isn't typed exactly
- Automatic tax (8%) and shipping (free on orders over $100)
- Discount codes: WELCOME10 (10%), SAVE20 (20%), VIP30 (30%)
- Recommendations based on category and popularity

Be proactive:
- If a product isn't found, suggest the similar alternatives from the results
- Mention when the user is close to free shipping
- Point out available discount codes when relevant
- Highlight product features and ratings

Always render tool results as natural, conversational text, never as raw JSON.
`)
}

// getEnv returns the value of the environment variable or a default.
func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
