package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/avorobev/fableroom/internal/gameapi"
	"github.com/avorobev/fableroom/internal/model"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": err.Error(),
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case *model.Room:
		o.printRoom(v)
	case *gameapi.AuthResult:
		o.printAuthResult(v)
	case *gameapi.User:
		o.printUser(v)
	case []gameapi.RoomSave:
		o.printSaves(v)
	case *gameapi.RoomSave:
		o.printSave(v)
	case []gameapi.Character:
		o.printCharacters(v)
	case *gameapi.Character:
		o.printCharacter(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

func (o *Output) printRoom(r *model.Room) {
	fmt.Printf("Room: %s\n", r.Code)

	status := "waiting"
	switch {
	case !r.Active:
		status = "closed (awaiting master)"
	case r.Paused:
		status = "paused"
	case r.GameStarted:
		status = "in game"
	}
	fmt.Printf("Status: %s\n", status)

	limit := ""
	if r.MaxPlayers != nil {
		limit = fmt.Sprintf("/%d", *r.MaxPlayers)
	}
	fmt.Printf("Players (%d%s):\n", len(r.Players), limit)
	for _, p := range r.Players {
		role := ""
		if p.Role == model.RoleMaster {
			role = " [master]"
		}
		conn := ""
		if !p.IsConnected {
			conn = " (offline)"
		}
		fmt.Printf("  - %s%s%s\n", p.Username, role, conn)
	}
}

func (o *Output) printAuthResult(a *gameapi.AuthResult) {
	o.printUser(&a.User)
	fmt.Printf("Token: %s\n", a.Token)
}

func (o *Output) printUser(u *gameapi.User) {
	fmt.Printf("User: %s (%s)\n", u.Username, u.ID)
}

func (o *Output) printSaves(saves []gameapi.RoomSave) {
	if len(saves) == 0 {
		fmt.Println("No saved rooms")
		return
	}
	for _, s := range saves {
		o.printSave(&s)
		fmt.Println()
	}
}

func (o *Output) printSave(s *gameapi.RoomSave) {
	fmt.Printf("Save: %s\n", s.ID)
	fmt.Printf("Room: %s\n", s.RoomCode)
	fmt.Printf("Players: %d\n", len(s.Players))
	started := "no"
	if s.GameStarted {
		started = "yes"
	}
	fmt.Printf("Game started: %s\n", started)
	fmt.Printf("Saved at: %s\n", s.CreatedAt.Format("2006-01-02 15:04:05"))
}

func (o *Output) printCharacters(characters []gameapi.Character) {
	if len(characters) == 0 {
		fmt.Println("No characters")
		return
	}
	for _, c := range characters {
		o.printCharacter(&c)
		fmt.Println()
	}
}

func (o *Output) printCharacter(c *gameapi.Character) {
	fmt.Printf("Character: %s (%s)\n", c.Name, c.ID)
	if c.Description != "" {
		fmt.Printf("Description: %s\n", c.Description)
	}
}
