package Config

import (
	"log"
	"os"

	"github.com/yosuke-furukawa/json5/encoding/json5"
)

// Settings holds the server configuration loaded from config.json5.
// The file is optional; defaults cover local development.
type Settings struct {
	Port            string `json:"port"`
	AllowOrigins    string `json:"allow_origins"`
	OverdueCronAt   string `json:"overdue_cron_at"`
	RunChecksOnBoot bool   `json:"run_checks_on_boot"`
}

var Current = defaults()

func defaults() Settings {
	return Settings{
		Port:          ":3001",
		AllowOrigins:  "*",
		OverdueCronAt: "0 0 1 * * *",
	}
}

// Load reads config.json5 from the working directory into Current.
// A missing file keeps the defaults; a malformed one is fatal.
func Load() {
	f, err := os.Open("config.json5")
	if err != nil {
		log.Println("No config.json5 found, using default settings")
		return
	}
	defer f.Close()

	settings := defaults()
	if err := json5.NewDecoder(f).Decode(&settings); err != nil {
		log.Fatalf("Failed to parse config.json5: %v", err)
	}
	Current = settings
}
