package middleware

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"Sitebook/Models"

	"github.com/gofiber/fiber/v2"
)

// LogData contains the fields written for each request
type LogData struct {
	Timestamp time.Time     `json:"timestamp"`
	Method    string        `json:"method"`
	Path      string        `json:"path"`
	URL       string        `json:"url"`
	Status    int           `json:"status"`
	Latency   time.Duration `json:"latency"`
	IP        string        `json:"ip"`
	UserAgent string        `json:"user_agent"`
	Error     string        `json:"error,omitempty"`
	UserID    interface{}   `json:"user_id,omitempty"`
	TenantID  interface{}   `json:"tenant_id,omitempty"`
	Username  string        `json:"username,omitempty"`
}

// RequestLogger logs every request as a JSON line to console and file.
func RequestLogger() fiber.Handler {
	if err := os.MkdirAll("logs", 0755); err != nil {
		log.Printf("Error creating logs directory: %v\n", err)
	}

	skipPaths := map[string]bool{"/health": true, "/metrics": true}

	return func(c *fiber.Ctx) error {
		if skipPaths[c.Path()] {
			return c.Next()
		}

		start := time.Now()
		err := c.Next()
		latency := time.Since(start)

		data := LogData{
			Timestamp: start,
			Method:    c.Method(),
			Path:      c.Path(),
			URL:       c.OriginalURL(),
			Status:    c.Response().StatusCode(),
			Latency:   latency,
			IP:        c.IP(),
			UserAgent: c.Get("User-Agent"),
		}

		if user, ok := c.Locals("user").(Models.User); ok {
			data.UserID = user.ID
			data.TenantID = user.TenantID
			data.Username = user.Name
		}
		if err != nil {
			data.Error = err.Error()
		}

		jsonData, _ := json.Marshal(data)
		log.Println(string(jsonData))
		logToFile("logs/requests.log", string(jsonData))

		return err
	}
}

// ErrorLogger writes failed requests to a separate error log.
func ErrorLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		if err == nil && c.Response().StatusCode() < 400 {
			return nil
		}

		data := LogData{
			Timestamp: start,
			Method:    c.Method(),
			Path:      c.Path(),
			URL:       c.OriginalURL(),
			Status:    c.Response().StatusCode(),
			Latency:   time.Since(start),
			IP:        c.IP(),
		}
		if user, ok := c.Locals("user").(Models.User); ok {
			data.UserID = user.ID
			data.TenantID = user.TenantID
			data.Username = user.Name
		}
		if err != nil {
			data.Error = err.Error()
		}

		jsonData, _ := json.Marshal(data)
		logToFile("logs/errors.log", string(jsonData))

		return err
	}
}

func logToFile(filePath, message string) {
	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		log.Printf("Error opening log file: %v\n", err)
		return
	}
	defer file.Close()

	if _, err := fmt.Fprintln(file, message); err != nil {
		log.Printf("Error writing to log file: %v\n", err)
	}
}
