// Command tsctl is a terminal client for the threadstream service.
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lalith-99/threadstream/internal/pacer"
)

type tokenFile struct {
	Token string `json:"token"`
	Email string `json:"email"`
}

func cfgDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "threadstream")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "threadstream")
}

func tokenPath() string { return filepath.Join(cfgDir(), "token.json") }

func saveToken(token, email string) error {
	if err := os.MkdirAll(cfgDir(), 0o700); err != nil {
		return err
	}
	b, err := json.MarshalIndent(tokenFile{Token: token, Email: email}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(tokenPath(), b, 0o600)
}

func loadToken() (tokenFile, error) {
	var tf tokenFile
	b, err := os.ReadFile(tokenPath())
	if err != nil {
		return tf, err
	}
	err = json.Unmarshal(b, &tf)
	return tf, err
}

type client struct {
	base  string
	token string
	http  *http.Client
}

func (c *client) do(method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, c.base+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s (%d)", apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("request failed (%d)", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

type authResult struct {
	Token string `json:"token"`
	User  struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"user"`
}

func main() {
	server := flag.String("server", "http://localhost:8081", "threadstream server base URL")
	interval := flag.Duration("interval", pacer.DefaultInterval, "reveal interval per token")
	flag.Parse()

	c := &client{base: *server, http: &http.Client{Timeout: 2 * time.Minute}}
	if tf, err := loadToken(); err == nil {
		c.token = tf.Token
		fmt.Printf("signed in as %s\n", tf.Email)
	}

	threadID := uuid.NewString()
	fmt.Println("threadstream client. Commands: /register /login /threads /open <id> /new /delete <id> /quit")
	fmt.Printf("current thread: %s\n", threadID)

	sc := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !sc.Scan() {
			return
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "/") {
			if quit := command(c, sc, line, &threadID, *interval); quit {
				return
			}
			continue
		}
		sendTurn(c, threadID, line, *interval)
	}
}

func command(c *client, sc *bufio.Scanner, line string, threadID *string, interval time.Duration) bool {
	fields := strings.Fields(line)
	switch fields[0] {
	case "/quit", "/exit":
		return true

	case "/new":
		*threadID = uuid.NewString()
		fmt.Printf("current thread: %s\n", *threadID)

	case "/register", "/login":
		email := prompt(sc, "email: ")
		password := prompt(sc, "password: ")
		body := map[string]string{"email": email, "password": password}
		path := "/v1/auth/login"
		if fields[0] == "/register" {
			body["name"] = prompt(sc, "name: ")
			path = "/v1/auth/register"
		}
		var res authResult
		if err := c.do(http.MethodPost, path, body, &res); err != nil {
			fmt.Println("error:", err)
			return false
		}
		c.token = res.Token
		if err := saveToken(res.Token, res.User.Email); err != nil {
			fmt.Println("warning: could not save token:", err)
		}
		fmt.Printf("signed in as %s\n", res.User.Email)

	case "/threads":
		var res struct {
			Threads []struct {
				ThreadID  string    `json:"threadId"`
				Title     string    `json:"title"`
				UpdatedAt time.Time `json:"updatedAt"`
			} `json:"threads"`
		}
		if err := c.do(http.MethodGet, "/v1/chat/threads", nil, &res); err != nil {
			fmt.Println("error:", err)
			return false
		}
		for _, th := range res.Threads {
			fmt.Printf("%s  %-50s  %s\n", th.ThreadID, th.Title, th.UpdatedAt.Local().Format(time.DateTime))
		}
		if len(res.Threads) == 0 {
			fmt.Println("no threads yet")
		}

	case "/open":
		if len(fields) < 2 {
			fmt.Println("usage: /open <threadId>")
			return false
		}
		var res struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := c.do(http.MethodGet, "/v1/chat/threads/"+fields[1], nil, &res); err != nil {
			fmt.Println("error:", err)
			return false
		}
		*threadID = fields[1]
		for _, m := range res.Messages {
			fmt.Printf("[%s] %s\n", m.Role, m.Content)
		}
		fmt.Printf("current thread: %s\n", *threadID)

	case "/delete":
		if len(fields) < 2 {
			fmt.Println("usage: /delete <threadId>")
			return false
		}
		if err := c.do(http.MethodDelete, "/v1/chat/threads/"+fields[1], nil, nil); err != nil {
			fmt.Println("error:", err)
			return false
		}
		fmt.Println("deleted", fields[1])

	default:
		fmt.Println("unknown command:", fields[0])
	}
	return false
}

func prompt(sc *bufio.Scanner, label string) string {
	fmt.Print(label)
	if !sc.Scan() {
		return ""
	}
	return strings.TrimSpace(sc.Text())
}

// sendTurn posts one message and reveals the reply token by token.
func sendTurn(c *client, threadID, message string, interval time.Duration) {
	var res struct {
		Reply string `json:"reply"`
	}
	err := c.do(http.MethodPost, "/v1/chat", map[string]string{
		"threadId": threadID,
		"message":  message,
	}, &res)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	p := pacer.New(interval)
	for prefix := range p.Start(res.Reply) {
		fmt.Print("\r" + prefix)
	}
	fmt.Println()
}
