package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/divvyup/divvy/internal/middleware"
	"github.com/divvyup/divvy/internal/service"
)

// GroupHandler handles HTTP requests for groups, joins and invites.
type GroupHandler struct {
	service *service.GroupService
}

// NewGroupHandler creates a new GroupHandler.
func NewGroupHandler(service *service.GroupService) *GroupHandler {
	return &GroupHandler{service: service}
}

// CreateGroupPayload defines the structure for group creation requests.
type CreateGroupPayload struct {
	Name     string `json:"name"`
	Password string `json:"password"`
	Emoji    string `json:"emoji,omitempty"`
}

// JoinPayload carries exactly one join credential: a group name+password
// pair, or an invite token. Supplying both or neither is a caller error.
type JoinPayload struct {
	GroupName   string `json:"group_name,omitempty"`
	Password    string `json:"password,omitempty"`
	InviteToken string `json:"invite_token,omitempty"`
}

// CreateInvitePayload optionally overrides the default invite expiry.
type CreateInvitePayload struct {
	TTLSeconds int64 `json:"ttl_seconds,omitempty"`
}

type groupResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Emoji     string `json:"emoji,omitempty"`
	CreatedAt int64  `json:"created_at"`
}

type groupSummaryResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Emoji       string `json:"emoji,omitempty"`
	MemberCount int    `json:"member_count"`
}

// Create handles group creation; the caller becomes the first member.
func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var payload CreateGroupPayload
	if err := decode(r, &payload); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if payload.Name == "" || payload.Password == "" {
		badRequest(w, "name and password required")
		return
	}

	group, err := h.service.CreateGroup(r.Context(), userID, payload.Name, payload.Password, payload.Emoji)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, groupResponse{
		ID:        group.ID,
		Name:      group.Name,
		Emoji:     group.Emoji,
		CreatedAt: group.CreatedAt,
	})
}

// List returns the caller's groups in short form.
func (h *GroupHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	summaries, err := h.service.Groups(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]groupSummaryResponse, 0, len(summaries))
	for _, s := range summaries {
		resp = append(resp, groupSummaryResponse{
			ID:          s.ID,
			Name:        s.Name,
			Emoji:       s.Emoji,
			MemberCount: s.MemberCount,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get returns the full group view for a member.
func (h *GroupHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	groupID := chi.URLParam(r, "groupID")

	view, err := h.service.View(r.Context(), userID, groupID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// Join handles both join strategies, selected by which credential the
// payload carries.
func (h *GroupHandler) Join(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var payload JoinPayload
	if err := decode(r, &payload); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	byPassword := payload.GroupName != "" || payload.Password != ""
	byInvite := payload.InviteToken != ""
	if byPassword == byInvite {
		badRequest(w, "supply either group_name+password or invite_token")
		return
	}

	var view *service.GroupView
	var err error
	if byInvite {
		view, err = h.service.JoinByInvite(r.Context(), userID, payload.InviteToken)
	} else {
		view, err = h.service.JoinByPassword(r.Context(), userID, payload.GroupName, payload.Password)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// CreateInvite mints a single-use invite for the caller's group.
func (h *GroupHandler) CreateInvite(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	groupID := chi.URLParam(r, "groupID")

	var payload CreateInvitePayload
	if r.ContentLength > 0 {
		if err := decode(r, &payload); err != nil {
			badRequest(w, "invalid request body")
			return
		}
	}

	invite, err := h.service.CreateInvite(r.Context(), userID, groupID,
		time.Duration(payload.TTLSeconds)*time.Second)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, service.InviteView{
		Token:     invite.Token,
		ExpiresAt: invite.ExpiresAt,
	})
}
