package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/mcoot/lanterngame/internal/api/response"
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
			"error": map[string]string{
				"message": err.Error(),
			},
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
	case response.Player:
		o.printPlayer(v)
	case response.AuthResponse:
		o.printPlayer(v.Player)
		fmt.Printf("Token: %s\n", v.SessionToken)
	case response.Wallet:
		fmt.Printf("Balance: %d\n", v.Balance)
	case response.Station:
		o.printStation(v)
	case []response.Station:
		for _, s := range v {
			o.printStationLine(s)
		}
	case response.Team:
		o.printTeamLine(v)
	case []response.Team:
		for _, t := range v {
			o.printTeamLine(t)
		}
	case []response.Standing:
		o.printStandings(v)
	case response.Round:
		o.printRound(v)
	case response.HackSession:
		o.printHackSession(v)
	case response.GuessResponse:
		o.printGuess(v)
	case response.Resolution:
		o.printHackSession(v.Session)
		o.printCapture(v.Capture)
	case response.CalibrationMission:
		o.printMission(v)
	case []response.CalibrationMission:
		for _, m := range v {
			o.printMission(m)
		}
	case response.ActiveCalibration:
		if !v.Active || v.Mission == nil {
			fmt.Println("No active calibration")
			return
		}
		o.printMission(*v.Mission)
	case response.Completion:
		o.printMission(v.Mission)
		fmt.Printf("Reward: %d (balance %d)\n", v.Reward, v.Balance)
	case response.SeedResult:
		fmt.Printf("Seeded %d of %d game users\n", v.Created, v.Submitted)
	case response.FakePasswords:
		fmt.Printf("Fake passwords (%d): %s\n", len(v.Passwords), strings.Join(v.Passwords, ", "))
	case HealthResult:
		fmt.Printf("Server: %s\n", v.Server)
		fmt.Printf("Status: %s\n", v.Status)
		if v.RoundActive != nil {
			fmt.Printf("Round live: %s\n", yesNo(*v.RoundActive))
		}
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// HealthResult is the health endpoint's reply plus the round gate, when readable
type HealthResult struct {
	Status      string `json:"status"`
	Server      string `json:"server,omitempty"`
	RoundActive *bool  `json:"round_active,omitempty"`
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func ownerString(owner *int) string {
	if owner == nil {
		return "-"
	}
	return fmt.Sprintf("team %d", *owner)
}

func (o *Output) printPlayer(p response.Player) {
	fmt.Printf("Player: %s (%s)\n", p.DisplayName, p.ID)
	fmt.Printf("Guest: %s\n", yesNo(p.IsGuest))
	if p.TeamID != nil {
		fmt.Printf("Team: %d\n", *p.TeamID)
	}
}

func (o *Output) printStation(s response.Station) {
	fmt.Printf("Station %d: %s\n", s.StationID, s.StationName)
	fmt.Printf("Signal: %d\n", s.SignalValue)
	fmt.Printf("Owner: %s\n", ownerString(s.Owner))
	fmt.Printf("Active: %s\n", yesNo(s.IsActive))
	fmt.Printf("Under attack: %s\n", yesNo(s.IsUnderAttack))
	fmt.Printf("Calibration reward: %d\n", s.CalibrationReward)
}

func (o *Output) printStationLine(s response.Station) {
	flags := ""
	if !s.IsActive {
		flags += " [inactive]"
	}
	if s.IsUnderAttack {
		flags += " [under attack]"
	}
	fmt.Printf("%4d  %-20s signal=%-4d owner=%s%s\n", s.StationID, s.StationName, s.SignalValue, ownerString(s.Owner), flags)
}

func (o *Output) printTeamLine(t response.Team) {
	inactive := ""
	if !t.IsActive {
		inactive = " [inactive]"
	}
	fmt.Printf("%4d  %-20s (%s) points=%d%s\n", t.TeamID, t.TeamName, t.ShortName, t.Points, inactive)
}

func (o *Output) printStandings(standings []response.Standing) {
	if len(standings) == 0 {
		fmt.Println("No teams")
		return
	}
	fmt.Printf("%-4s %-20s %7s %9s %7s\n", "#", "TEAM", "POINTS", "STATIONS", "SIGNAL")
	for _, s := range standings {
		fmt.Printf("%-4d %-20s %7d %9d %7d\n", s.Rank, s.Team.TeamName, s.Team.Points, s.StationCount, s.TotalSignal)
	}
}

func (o *Output) printRound(r response.Round) {
	fmt.Printf("Round active: %s\n", yesNo(r.IsActive))
	if r.StartTime != nil {
		fmt.Printf("Started: %s\n", r.StartTime.Format("2006-01-02 15:04:05"))
	}
	if r.EndTime != nil {
		fmt.Printf("Ended: %s\n", r.EndTime.Format("2006-01-02 15:04:05"))
	}
}

func (o *Output) printHackSession(h response.HackSession) {
	state := "in progress"
	if h.Done {
		state = "failed"
		if h.WasSuccessful {
			state = "succeeded"
		}
	}
	fmt.Printf("Hack on station %d: %s\n", h.StationID, state)
	fmt.Printf("Tries left: %d\n", h.TriesLeft)
	if len(h.Entries) > 0 && !h.Done {
		fmt.Println("Intercepted credentials:")
		for _, e := range h.Entries {
			fmt.Printf("  %-16s %-16s hint: #%d = %q\n", e.UserName, e.Password, e.Hint.Index, e.Hint.Character)
		}
	}
}

func (o *Output) printGuess(g response.GuessResponse) {
	if g.Correct {
		fmt.Println("Access granted")
	} else {
		fmt.Println("Access denied")
	}
	o.printHackSession(g.Session)
	o.printCapture(g.Capture)
}

func (o *Output) printCapture(c *response.Capture) {
	if c == nil {
		return
	}
	fmt.Printf("Station %s captured by %s (+%d points)\n", c.Station.StationName, c.Team.TeamName, c.Awarded)
}

func (o *Output) printMission(m response.CalibrationMission) {
	state := "active"
	switch {
	case m.Cancelled:
		state = "cancelled"
	case m.Completed:
		state = "completed"
	}
	fmt.Printf("Calibration %s on station %d: %s (code %s)\n", m.ID, m.StationID, state, m.Code)
}
