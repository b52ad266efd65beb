package users

import (
	"encoding/json"
	"time"
)

// Profile is the portal's read-mostly projection of the backend user record.
// It is overwritten wholesale on every fetch, never partially merged.
type Profile struct {
	ID     string `json:"id"`
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty"`
	Role   Role   `json:"role,omitempty"`
	Avatar string `json:"avatar,omitempty"`

	// Role-specific fields
	StudentNumber string `json:"student_number,omitempty"` // students
	Course        string `json:"course,omitempty"`         // students
	Department    string `json:"department,omitempty"`     // teachers
	Title         string `json:"title,omitempty"`          // teachers

	IsNewUser            bool `json:"isNewUser,omitempty"`
	HasSecurityQuestions bool `json:"hasSecurityQuestions,omitempty"`

	CreatedAt time.Time `json:"created_at,omitempty"`
}

// profileJSON mirrors Profile but carries the role as a raw message, because
// the backend alternates between `"role": "STUDENT"` and
// `"role": {"name": "STUDENT"}`. This is the single point where the shape is
// normalised; everything past here sees the Role enum.
type profileJSON struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Email         string          `json:"email"`
	Role          json.RawMessage `json:"role"`
	Avatar        string          `json:"avatar"`
	StudentNumber string          `json:"student_number"`
	Course        string          `json:"course"`
	Department    string          `json:"department"`
	Title         string          `json:"title"`

	IsNewUser            bool `json:"isNewUser"`
	HasSecurityQuestions bool `json:"hasSecurityQuestions"`

	CreatedAt time.Time `json:"created_at"`
}

func (p *Profile) UnmarshalJSON(data []byte) error {
	var raw profileJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = Profile{
		ID:                   raw.ID,
		Name:                 raw.Name,
		Email:                raw.Email,
		Role:                 NormalizeRole(raw.Role),
		Avatar:               raw.Avatar,
		StudentNumber:        raw.StudentNumber,
		Course:               raw.Course,
		Department:           raw.Department,
		Title:                raw.Title,
		IsNewUser:            raw.IsNewUser,
		HasSecurityQuestions: raw.HasSecurityQuestions,
		CreatedAt:            raw.CreatedAt,
	}
	return nil
}

// NormalizeRole accepts either of the backend's two role encodings, a bare
// string or an object with a name field, and maps it onto the enum.
func NormalizeRole(raw json.RawMessage) Role {
	if len(raw) == 0 {
		return RoleUnknown
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return ParseRole(s)
	}

	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return ParseRole(obj.Name)
	}
	return RoleUnknown
}
