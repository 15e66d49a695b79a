package httpapi

import (
	"net/http"
	"strings"

	"github.com/riskibarqy/infantry-community/internal/usecase"
)

type createSquadRequest struct {
	Name        string `json:"name" validate:"required,max=50"`
	Tag         string `json:"tag" validate:"required,min=1,max=5"`
	Description string `json:"description" validate:"max=1000"`
	DiscordLink string `json:"discord_link" validate:"omitempty,url"`
	WebsiteLink string `json:"website_link" validate:"omitempty,url"`
	BannerURL   string `json:"banner_url" validate:"omitempty,url"`
}

type leaveSquadRequest struct {
	SquadID string `json:"squad_id" validate:"required"`
}

type transferCaptainRequest struct {
	SquadID      string `json:"squad_id" validate:"required"`
	NewCaptainID string `json:"new_captain_id" validate:"required"`
}

type invitePlayerRequest struct {
	PlayerID string `json:"player_id" validate:"required"`
}

type respondInviteRequest struct {
	Accept *bool `json:"accept" validate:"required"`
}

type setLegacyRequest struct {
	IsLegacy *bool `json:"is_legacy" validate:"required"`
}

func (h *Handler) ListSquads(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListSquads")
	defer span.End()

	items, err := h.squadService.ListActive(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list squads failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]squadSummaryDTO, 0, len(items))
	for _, item := range items {
		out = append(out, squadSummaryToDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) GetSquad(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSquad")
	defer span.End()

	squadID := strings.TrimSpace(r.PathValue("squadID"))
	detail, err := h.squadService.GetSquad(ctx, squadID)
	if err != nil {
		h.logger.WarnContext(ctx, "get squad failed", "squad_id", squadID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, squadDetailToDTO(detail))
}

func (h *Handler) CreateSquad(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateSquad")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	var req createSquadRequest
	if err := h.decodeAndValidate(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.squadService.CreateSquad(ctx, usecase.CreateSquadInput{
		ActorID:     principal.UserID,
		Name:        req.Name,
		Tag:         req.Tag,
		Description: req.Description,
		DiscordLink: req.DiscordLink,
		WebsiteLink: req.WebsiteLink,
		BannerURL:   req.BannerURL,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create squad failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, squadToDTO(item))
}

func (h *Handler) LeaveSquad(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.LeaveSquad")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	var req leaveSquadRequest
	if err := h.decodeAndValidate(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.squadService.LeaveSquad(ctx, principal.UserID, req.SquadID); err != nil {
		h.logger.WarnContext(ctx, "leave squad failed", "user_id", principal.UserID, "squad_id", req.SquadID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, messageDTO{Message: "Left squad"})
}

func (h *Handler) TransferCaptain(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.TransferCaptain")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	var req transferCaptainRequest
	if err := h.decodeAndValidate(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	err = h.squadService.TransferCaptain(ctx, usecase.TransferCaptainInput{
		ActorID:      principal.UserID,
		SquadID:      req.SquadID,
		NewCaptainID: req.NewCaptainID,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "transfer captain failed", "user_id", principal.UserID, "squad_id", req.SquadID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, messageDTO{Message: "Captain transferred"})
}

func (h *Handler) InvitePlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.InvitePlayer")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	var req invitePlayerRequest
	if err := h.decodeAndValidate(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	squadID := strings.TrimSpace(r.PathValue("squadID"))
	invite, err := h.squadService.InvitePlayer(ctx, usecase.InvitePlayerInput{
		ActorID:  principal.UserID,
		SquadID:  squadID,
		PlayerID: req.PlayerID,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "invite player failed", "squad_id", squadID, "player_id", req.PlayerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, inviteToDTO(invite))
}

func (h *Handler) ListMyInvites(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMyInvites")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	items, err := h.squadService.ListPendingInvites(ctx, principal.UserID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	out := make([]inviteDTO, 0, len(items))
	for _, item := range items {
		out = append(out, inviteToDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) RespondInvite(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RespondInvite")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	var req respondInviteRequest
	if err := h.decodeAndValidate(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	inviteID := strings.TrimSpace(r.PathValue("inviteID"))
	err = h.squadService.RespondInvite(ctx, usecase.RespondInviteInput{
		PlayerID: principal.UserID,
		InviteID: inviteID,
		Accept:   *req.Accept,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "respond invite failed", "invite_id", inviteID, "error", err)
		writeError(ctx, w, err)
		return
	}

	message := "Invite declined"
	if *req.Accept {
		message = "Joined squad"
	}
	writeSuccess(ctx, w, http.StatusOK, messageDTO{Message: message})
}

func (h *Handler) SetSquadLegacy(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SetSquadLegacy")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	var req setLegacyRequest
	if err := h.decodeAndValidate(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	squadID := strings.TrimSpace(r.PathValue("squadID"))
	if err := h.squadService.SetLegacy(ctx, principal.UserID, squadID, *req.IsLegacy); err != nil {
		h.logger.WarnContext(ctx, "set squad legacy failed", "squad_id", squadID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]any{"squad_id": squadID, "is_legacy": *req.IsLegacy})
}

func (h *Handler) CheckSquadCapacity(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CheckSquadCapacity")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	squadID := strings.TrimSpace(r.PathValue("squadID"))
	check, err := h.squadService.CheckCapacity(ctx, principal.UserID, squadID, r.URL.Query().Get("playerId"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, capacityDTO{
		Allowed:           check.Allowed,
		Reason:            check.Reason,
		RegularCount:      check.RegularCount,
		TransitionalCount: check.TransitionalCount,
		MaxMembers:        check.MaxMembers,
	})
}

func (h *Handler) GetRosterLockStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetRosterLockStatus")
	defer span.End()

	status, err := h.rosterLockService.Status(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "roster lock status failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, rosterLockDTO{
		IsLocked:       status.IsLocked,
		Reason:         status.Reason,
		SeasonID:       status.SeasonID,
		Label:          status.LockedLabel,
		SeasonNumber:   status.SeasonNumber,
		SeasonName:     status.SeasonName,
		NoActiveSeason: status.NoActiveSeason,
	})
}
