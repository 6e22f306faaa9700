package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error"`
}

type chat struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

var (
	authToken  string
	lastChatID string
	reader     = bufio.NewReader(os.Stdin)
	client     *resty.Client
)

func main() {
	baseURL := flag.String("url", "http://localhost:8080/api/v1", "chat service base url")
	flag.Parse()

	// generation can take a while on a local model
	client = resty.New().
		SetBaseURL(strings.TrimRight(*baseURL, "/")).
		SetTimeout(3 * time.Minute).
		SetHeader("Content-Type", "application/json")

	fmt.Println("Welcome to Local Chat CLI")
	for {
		if authToken == "" {
			printAuthMenu()
		} else {
			printMainMenu()
		}
	}
}

func printAuthMenu() {
	fmt.Println("\n=== Auth Menu ===")
	fmt.Println("1. Login")
	fmt.Println("2. Register")
	fmt.Println("3. Exit")

	switch prompt("> ") {
	case "1":
		handleLogin()
	case "2":
		handleRegister()
	case "3":
		fmt.Println("Goodbye!")
		os.Exit(0)
	default:
		fmt.Println("Invalid choice")
	}
}

func printMainMenu() {
	fmt.Println("\n=== Main Menu ===")
	fmt.Println("1. Start New Chat")
	if lastChatID != "" {
		fmt.Printf("2. Resume Chat (%s)\n", lastChatID)
	} else {
		fmt.Println("2. Resume Chat (No recent chat)")
	}
	fmt.Println("3. List Chats")
	fmt.Println("4. View History")
	fmt.Println("5. Models")
	fmt.Println("6. Logout")
	fmt.Println("7. Exit")

	switch prompt("> ") {
	case "1":
		handleNewChat()
	case "2":
		if lastChatID != "" {
			enterChatLoop(lastChatID)
		} else {
			fmt.Println("No recent chat to resume. Please start a new chat.")
		}
	case "3":
		handleListChats()
	case "4":
		handleHistory()
	case "5":
		handleModels()
	case "6":
		authToken = ""
		lastChatID = ""
		fmt.Println("Logged out")
	case "7":
		fmt.Println("Goodbye!")
		os.Exit(0)
	default:
		fmt.Println("Invalid choice")
	}
}

func prompt(label string) string {
	fmt.Print(label)
	input, err := reader.ReadString('\n')
	if err != nil {
		os.Exit(0)
	}
	return strings.TrimSpace(input)
}

func authed() *resty.Request {
	return client.R().SetAuthToken(authToken).SetError(&apiError{})
}

// failure turns a transport error or a non-2xx reply into one printable error.
func failure(resp *resty.Response, err error) error {
	if err != nil {
		return err
	}
	if resp.IsSuccess() {
		return nil
	}
	if e, ok := resp.Error().(*apiError); ok && e.Error.Message != "" {
		return fmt.Errorf("%s (%s)", e.Error.Message, e.Error.Code)
	}
	return errors.New(resp.Status())
}

func handleRegister() {
	email := prompt("Email: ")
	name := prompt("Name (optional): ")
	password := prompt("Password: ")

	resp, err := client.R().
		SetBody(map[string]string{"email": email, "name": name, "password": password}).
		SetError(&apiError{}).
		Post("/auth/register")
	if err := failure(resp, err); err != nil {
		fmt.Printf("Registration failed: %v\n", err)
		return
	}
	fmt.Println("Registration successful! Please login.")
}

func handleLogin() {
	email := prompt("Email: ")
	password := prompt("Password: ")

	var result struct {
		AccessToken string `json:"access_token"`
	}
	resp, err := client.R().
		SetBody(map[string]string{"email": email, "password": password}).
		SetResult(&result).
		SetError(&apiError{}).
		Post("/auth/login")
	if err := failure(resp, err); err != nil {
		fmt.Printf("Login failed: %v\n", err)
		return
	}
	if result.AccessToken == "" {
		fmt.Println("Login failed: empty token")
		return
	}
	authToken = result.AccessToken
	fmt.Println("Login successful!")
}

func handleNewChat() {
	name := prompt("Chat name (optional): ")

	var created chat
	resp, err := authed().
		SetBody(map[string]string{"name": name}).
		SetResult(&created).
		Post("/chats")
	if err := failure(resp, err); err != nil {
		fmt.Printf("Failed to create chat: %v\n", err)
		return
	}
	fmt.Printf("Chat created: %s (%s)\n", created.Name, created.ID)
	lastChatID = created.ID
	enterChatLoop(created.ID)
}

func handleListChats() {
	var result struct {
		Chats []chat `json:"chats"`
	}
	resp, err := authed().SetResult(&result).Get("/chats")
	if err := failure(resp, err); err != nil {
		fmt.Printf("Failed to list chats: %v\n", err)
		return
	}
	if len(result.Chats) == 0 {
		fmt.Println("No chats yet")
		return
	}
	for _, c := range result.Chats {
		fmt.Printf("%s  %s  %s\n", c.ID, c.CreatedAt.Local().Format("2006-01-02 15:04"), c.Name)
	}
}

func enterChatLoop(chatID string) {
	model := prompt("Model (blank for server default): ")
	fmt.Println("Type 'exit' to quit chat.")
	for {
		msg := prompt("You: ")
		if msg == "exit" {
			break
		}
		if msg == "" {
			continue
		}
		sendMessage(chatID, msg, model)
	}
}

func sendMessage(chatID, content, model string) {
	var turn struct {
		AssistantMessage message `json:"assistant_message"`
		Fallback         bool    `json:"fallback"`
	}
	resp, err := authed().
		SetBody(map[string]string{"content": content, "model": model}).
		SetResult(&turn).
		Post("/chats/" + chatID + "/messages")
	if err := failure(resp, err); err != nil {
		fmt.Printf("Error sending message: %v\n", err)
		return
	}
	fmt.Printf("Bot: %s\n", turn.AssistantMessage.Content)
	if turn.Fallback {
		fmt.Println("(the local model did not answer; run option 5 to check the server)")
	}
}

func handleHistory() {
	label := "Enter Chat ID"
	if lastChatID != "" {
		label += fmt.Sprintf(" (default: %s)", lastChatID)
	}
	chatID := prompt(label + ": ")
	if chatID == "" {
		chatID = lastChatID
	}
	if chatID == "" {
		fmt.Println("Chat ID is required")
		return
	}

	var result struct {
		Messages []message `json:"messages"`
	}
	resp, err := authed().SetResult(&result).Get("/chats/" + chatID + "/messages")
	if err := failure(resp, err); err != nil {
		fmt.Printf("Failed to retrieve history: %v\n", err)
		return
	}
	for _, msg := range result.Messages {
		fmt.Printf("[%s] %s: %s\n", msg.CreatedAt.Local().Format("15:04:05"), msg.Role, msg.Content)
	}
}

func handleModels() {
	var result struct {
		Models       []string `json:"models"`
		IsConnected  bool     `json:"is_connected"`
		DefaultModel string   `json:"default_model"`
	}
	resp, err := authed().SetResult(&result).Get("/models")
	if err := failure(resp, err); err != nil {
		fmt.Printf("Failed to fetch models: %v\n", err)
		return
	}
	status := "disconnected"
	if result.IsConnected {
		status = "connected"
	}
	fmt.Printf("Local model server: %s, default model: %s\n", status, result.DefaultModel)
	for _, m := range result.Models {
		fmt.Printf("  - %s\n", m)
	}
}
