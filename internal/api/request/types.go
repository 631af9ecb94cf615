package request

import (
	"bytes"
	"encoding/json"
	"net/http"
	"regexp"
	"strings"

	"github.com/mcoot/gamematch/internal/api/apierr"
	"github.com/mcoot/gamematch/internal/model"
)

var (
	namePattern  = regexp.MustCompile(`^[A-Za-zÀ-ÿ\s]+$`)
	emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)
)

// Decode reads a JSON request body into v
func Decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apierr.NewInvalidRequestError("invalid request body")
	}
	return nil
}

// RegisterPlayerRequest is the request body for registering a player
type RegisterPlayerRequest struct {
	Name     string `json:"name"`
	Nickname string `json:"nickname"`
	Email    string `json:"email"`
}

// Validate checks the registration fields
func (r RegisterPlayerRequest) Validate() error {
	if err := validateName(r.Name); err != nil {
		return err
	}
	if err := validateNickname(r.Nickname); err != nil {
		return err
	}
	return validateEmail(r.Email)
}

// UpdatePlayerRequest is the request body for a partial player update.
// Absent fields are left untouched; "match_id": null clears the match.
type UpdatePlayerRequest struct {
	Name     *string    `json:"name"`
	Nickname *string    `json:"nickname"`
	Email    *string    `json:"email"`
	MatchID  NullableID `json:"match_id"`
}

// Validate checks the fields that are present
func (r UpdatePlayerRequest) Validate() error {
	if r.Name != nil {
		if err := validateName(*r.Name); err != nil {
			return err
		}
	}
	if r.Nickname != nil {
		if err := validateNickname(*r.Nickname); err != nil {
			return err
		}
	}
	if r.Email != nil {
		if err := validateEmail(*r.Email); err != nil {
			return err
		}
	}
	return nil
}

// ToUpdate converts the request to a model update
func (r UpdatePlayerRequest) ToUpdate() model.PlayerUpdate {
	update := model.PlayerUpdate{
		Name:     r.Name,
		Nickname: r.Nickname,
		Email:    r.Email,
		SetMatch: r.MatchID.Set,
	}
	if r.MatchID.Value != nil {
		id := model.MatchID(*r.MatchID.Value)
		update.MatchID = &id
	}
	return update
}

// NullableID tells an explicit null apart from an absent field
type NullableID struct {
	Set   bool
	Value *string
}

// UnmarshalJSON is only called when the field is present
func (n *NullableID) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(data, []byte("null")) {
		n.Value = nil
		return nil
	}
	var id string
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	n.Value = &id
	return nil
}

// CreateMatchRequest is the request body for creating a match
type CreateMatchRequest struct {
	Name string `json:"name"`
}

// Validate checks the match name
func (r CreateMatchRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return apierr.NewInvalidRequestError("match name is required")
	}
	return nil
}

// FinishMatchRequest is the request body for finishing a match
type FinishMatchRequest struct {
	Scores json.RawMessage `json:"scores"`
}

// ParseScores checks that scores is a non-empty object of numbers
func (r FinishMatchRequest) ParseScores() (model.Scores, error) {
	if len(r.Scores) == 0 || bytes.Equal(r.Scores, []byte("null")) {
		return nil, apierr.NewInvalidRequestError("scores are required to finish a match")
	}

	var raw map[string]float64
	if err := json.Unmarshal(r.Scores, &raw); err != nil {
		return nil, apierr.NewInvalidRequestError("scores must map player ids to numbers")
	}
	if len(raw) == 0 {
		return nil, apierr.NewInvalidRequestError("scores are required to finish a match")
	}

	scores := make(model.Scores, len(raw))
	for id, score := range raw {
		scores[model.PlayerID(id)] = score
	}
	return scores, nil
}

func validateName(name string) error {
	if !namePattern.MatchString(name) {
		return apierr.NewInvalidRequestError("invalid name, use only letters and spaces")
	}
	return nil
}

func validateNickname(nickname string) error {
	if strings.TrimSpace(nickname) == "" {
		return apierr.NewInvalidRequestError("nickname is required")
	}
	return nil
}

func validateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return apierr.NewInvalidRequestError("invalid email")
	}
	return nil
}
