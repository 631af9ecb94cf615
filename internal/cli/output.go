package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == OutputJSON {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	o.Print(Message{Message: msg})
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Player:
		o.printPlayer(v)
	case []Player:
		o.printPlayers(v)
	case Match:
		o.printMatch(v)
	case []Match:
		o.printMatches(v)
	case Message:
		fmt.Fprintln(o.w, v.Message)
	case HealthResult:
		fmt.Fprintf(o.w, "Status: %s\n", v.Status)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Player response type (matches API)
type Player struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Nickname  string    `json:"nickname"`
	Email     string    `json:"email"`
	MatchID   *string   `json:"match_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Match response type
type Match struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	State     string             `json:"state"`
	StartDate *time.Time         `json:"start_date"`
	Scores    map[string]float64 `json:"scores"`
	Players   []Player           `json:"players"`
	CreatedAt time.Time          `json:"created_at"`
}

// Message response type
type Message struct {
	Message string `json:"message"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printPlayer(p Player) {
	fmt.Fprintf(o.w, "Player: %s (%s)\n", p.Nickname, p.ID)
	fmt.Fprintf(o.w, "Name: %s\n", p.Name)
	fmt.Fprintf(o.w, "Email: %s\n", p.Email)
	fmt.Fprintf(o.w, "Match: %s\n", orDash(p.MatchID))
}

func (o *Output) printPlayers(players []Player) {
	tw := tabwriter.NewWriter(o.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNICKNAME\tNAME\tEMAIL\tMATCH")
	for _, p := range players {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", p.ID, p.Nickname, p.Name, p.Email, orDash(p.MatchID))
	}
	_ = tw.Flush()
}

func (o *Output) printMatch(m Match) {
	fmt.Fprintf(o.w, "Match: %s (%s)\n", m.Name, m.ID)
	fmt.Fprintf(o.w, "State: %s\n", m.State)
	if m.StartDate != nil {
		fmt.Fprintf(o.w, "Started: %s\n", m.StartDate.Format(time.RFC3339))
	}

	fmt.Fprintf(o.w, "Players (%d):\n", len(m.Players))
	for _, p := range m.Players {
		fmt.Fprintf(o.w, "  - %s (%s)\n", p.Nickname, p.ID)
	}

	if len(m.Scores) > 0 {
		fmt.Fprintln(o.w, "Scores:")
		ids := make([]string, 0, len(m.Scores))
		for id := range m.Scores {
			ids = append(ids, id)
		}
		slices.Sort(ids)
		for _, id := range ids {
			fmt.Fprintf(o.w, "  %s: %g\n", id, m.Scores[id])
		}
	}
}

func (o *Output) printMatches(matches []Match) {
	tw := tabwriter.NewWriter(o.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSTATE\tPLAYERS")
	for _, m := range matches {
		nicknames := make([]string, len(m.Players))
		for i, p := range m.Players {
			nicknames[i] = p.Nickname
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", m.ID, m.Name, m.State, strings.Join(nicknames, ","))
	}
	_ = tw.Flush()
}

func orDash(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}
