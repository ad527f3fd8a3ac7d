package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/cristhia-lara-reyes-99/apiDashboard/internal/domain"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userPayload struct {
	ID          string     `json:"id"`
	ClientTag   string     `json:"client_tag,omitempty"`
	Email       string     `json:"email"`
	Role        int        `json:"role"`
	Client      string     `json:"client,omitempty"`
	FirstName   string     `json:"first_name,omitempty"`
	LastName    string     `json:"last_name,omitempty"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

type configPayload struct {
	ImageName string          `json:"image_name,omitempty"`
	LogoName  string          `json:"logo_name,omitempty"`
	Colors    json.RawMessage `json:"colors,omitempty"`
}

type loginResponse struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expires_at"`
	User      userPayload   `json:"user"`
	Config    configPayload `json:"config"`
}

func (a *api) handleAuthLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}

	res, err := a.loginSvc.Login(r.Context(), req.Email, req.Password, clientIP(r), r.UserAgent())
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, loginResponse{
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt,
		User:      toUserPayload(res.User),
		Config: configPayload{
			ImageName: res.Config.ImageName,
			LogoName:  res.Config.LogoName,
			Colors:    res.Config.Colors,
		},
	})
}

// toUserPayload drops everything the client has no business seeing; the
// password hash never leaves the service layer in the first place.
func toUserPayload(u domain.User) userPayload {
	return userPayload{
		ID:          u.ID,
		ClientTag:   u.ClientTag,
		Email:       u.Email,
		Role:        int(u.Role),
		Client:      u.Client,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		LastLoginAt: u.LastLoginAt,
	}
}

type suspiciousAddressPayload struct {
	SourceIP      string    `json:"ip_address"`
	Identifiers   []string  `json:"identifiers,omitempty"`
	LastAttemptAt time.Time `json:"last_attempt_at"`
	TotalAttempts int       `json:"total_attempts"`
}

type loginAttemptsResponse struct {
	Total    int                        `json:"total"`
	Attempts []suspiciousAddressPayload `json:"attempts"`
}

func (a *api) handleLoginAttempts(w http.ResponseWriter, r *http.Request) {
	minAttempts, err := queryInt(r, "min_attempts")
	if err != nil {
		WriteDomainError(w, domain.NewValidationError(map[string]string{"min_attempts": "must be an integer"}))
		return
	}
	windowHours, err := queryInt(r, "window_hours")
	if err != nil {
		WriteDomainError(w, domain.NewValidationError(map[string]string{"window_hours": "must be an integer"}))
		return
	}

	list, err := a.loginSvc.SuspiciousActivity(r.Context(), minAttempts, time.Duration(windowHours)*time.Hour)
	if err != nil {
		a.logger.Error("suspicious activity lookup failed", "err", err)
		WriteDomainError(w, err)
		return
	}

	out := loginAttemptsResponse{
		Total:    len(list),
		Attempts: make([]suspiciousAddressPayload, 0, len(list)),
	}
	for _, s := range list {
		out.Attempts = append(out.Attempts, suspiciousAddressPayload{
			SourceIP:      s.SourceIP,
			Identifiers:   s.Identifiers,
			LastAttemptAt: s.LastAttemptAt,
			TotalAttempts: s.TotalAttempts,
		})
	}
	WriteJSON(w, http.StatusOK, out)
}
