package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Wizard provides an interactive configuration wizard
type Wizard struct {
	reader *bufio.Reader
}

// NewWizard creates a new configuration wizard
func NewWizard() *Wizard {
	return &Wizard{
		reader: bufio.NewReader(os.Stdin),
	}
}

// Run runs the interactive configuration wizard
func (w *Wizard) Run() (*Config, error) {
	fmt.Println("=== edbridge Configuration Wizard ===")
	fmt.Println()

	cfg := DefaultConfig()
	validator := NewValidator()

	// Default Model
	fmt.Println("Default Model:")
	fmt.Printf("Model name [%s]: ", cfg.Models.Default)
	model, err := w.readLine()
	if err != nil {
		return nil, err
	}

	if model != "" {
		cfg.Models.Default = model
	}

	fmt.Println()

	// Engine
	fmt.Println("Engine:")
	fmt.Print("Auto-commit engine edits? (y/n) [y]: ")
	auto, err := w.readLine()
	if err != nil {
		return nil, err
	}
	cfg.Engine.AutoCommits = auto == "" || strings.ToLower(auto) == "y"

	fmt.Println()

	// History
	fmt.Println("Instruction History:")
	fmt.Print("Record instructions to a local database? (y/n) [y]: ")
	hist, err := w.readLine()
	if err != nil {
		return nil, err
	}
	cfg.History.Enabled = hist == "" || strings.ToLower(hist) == "y"

	fmt.Println()

	// Log Level
	fmt.Println("Logging:")
	fmt.Print("Log level (debug/info/warn/error) [info]: ")
	level, err := w.readLine()
	if err != nil {
		return nil, err
	}

	if level != "" {
		if err := validator.ValidateLogLevel(level); err != nil {
			fmt.Printf("Warning: %v, using default (info)\n", err)
		} else {
			cfg.Logging.Level = level
		}
	}

	fmt.Println()
	fmt.Println("Configuration complete!")

	return cfg, nil
}

func (w *Wizard) readLine() (string, error) {
	line, err := w.reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
