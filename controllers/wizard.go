package controllers

import (
	"ari-backend/models"
	"ari-backend/services"
	"ari-backend/utils"
	"ari-backend/wizard"
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// maxGuestCSVSize bounds a guest list upload.
const maxGuestCSVSize = 5 << 20

// WizardController drives event-creation sessions kept in a session store
type WizardController struct {
	Sessions      services.SessionStore
	Launcher      *wizard.Launcher
	Images        *services.ImageStore
	RedirectDelay time.Duration
}

// AddGuestInput defines the expected JSON structure for a manually entered guest
type AddGuestInput struct {
	Name                string `json:"name" binding:"required"`
	PhoneNumber         string `json:"phone_number" binding:"required"`
	MessagingPreference string `json:"messaging_preference" binding:"omitempty,oneof=sms whatsapp"`
}

var errNotOwner = errors.New("wizard session belongs to another user")

// Start opens a new session on the basic info step
func (wc *WizardController) Start(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	session := wizard.NewSession(userID)
	if err := wc.Sessions.Create(c.Request.Context(), session); err != nil {
		log.Error().Err(err).Msg("Failed to create wizard session")
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to start wizard")
		return
	}

	c.JSON(http.StatusCreated, session.View())
}

func (wc *WizardController) Get(c *gin.Context) {
	session, ok := wc.load(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, session.View())
}

func (wc *WizardController) PatchBasicInfo(c *gin.Context) {
	mergePatch[wizard.BasicInfoPatch](wc, c)
}

func (wc *WizardController) PatchInvitation(c *gin.Context) {
	mergePatch[wizard.InvitationPatch](wc, c)
}

func (wc *WizardController) PatchScheduling(c *gin.Context) {
	mergePatch[wizard.SchedulingPatch](wc, c)
}

// mergePatch binds the body as a step patch and merges it.
func mergePatch[P wizard.Patch](wc *WizardController, c *gin.Context) {
	var patch P
	if err := c.ShouldBindJSON(&patch); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	wc.update(c, func(s *wizard.Session) error {
		return s.Wizard.Merge(patch)
	})
}

// ImportGuests replaces the roster with a CSV upload, sent either as the
// multipart field "file" or as the raw request body
func (wc *WizardController) ImportGuests(c *gin.Context) {
	var body io.Reader
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		header, err := c.FormFile("file")
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "CSV file is required")
			return
		}
		file, err := header.Open()
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Failed to read CSV file")
			return
		}
		defer file.Close()
		body = file
	} else {
		body = c.Request.Body
	}

	data, err := io.ReadAll(io.LimitReader(body, maxGuestCSVSize+1))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Failed to read CSV file")
		return
	}
	if len(data) > maxGuestCSVSize {
		utils.RespondWithError(c, http.StatusRequestEntityTooLarge, "CSV file must be 5MB or smaller")
		return
	}

	var result wizard.ImportResult
	session, ok := wc.mutate(c, func(s *wizard.Session) error {
		var err error
		result, err = s.Wizard.ImportGuests(bytes.NewReader(data))
		return err
	})
	if !ok {
		return
	}

	view := session.View()
	c.JSON(http.StatusOK, gin.H{
		"imported": len(result.Guests),
		"dropped":  result.Dropped,
		"summary":  view.Guests,
		"wizard":   view,
	})
}

func (wc *WizardController) AddGuest(c *gin.Context) {
	var input AddGuestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	wc.update(c, func(s *wizard.Session) error {
		return s.Wizard.AddGuest(wizard.GuestDraft{
			Name:                input.Name,
			PhoneNumber:         input.PhoneNumber,
			MessagingPreference: models.ParseChannel(input.MessagingPreference),
		})
	})
}

func (wc *WizardController) UpdateGuest(c *gin.Context) {
	index, ok := guestIndex(c)
	if !ok {
		return
	}
	var edit wizard.GuestEdit
	if err := c.ShouldBindJSON(&edit); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	wc.update(c, func(s *wizard.Session) error {
		return s.Wizard.UpdateGuest(index, edit)
	})
}

func (wc *WizardController) DeleteGuest(c *gin.Context) {
	index, ok := guestIndex(c)
	if !ok {
		return
	}
	wc.update(c, func(s *wizard.Session) error {
		return s.Wizard.RemoveGuest(index)
	})
}

func (wc *WizardController) ClearGuests(c *gin.Context) {
	wc.update(c, func(s *wizard.Session) error {
		return s.Wizard.ClearGuests()
	})
}

// UploadImage stores the invitation image and puts its public URL on the
// invitation step
func (wc *WizardController) UploadImage(c *gin.Context) {
	if wc.Images == nil {
		utils.RespondWithError(c, http.StatusServiceUnavailable, "Image uploads are not configured")
		return
	}
	session, ok := wc.load(c)
	if !ok {
		return
	}
	if session.Wizard.Step() != wizard.StepInvitation {
		utils.RespondWithError(c, http.StatusConflict, "Images can only be uploaded on the invitation step")
		return
	}

	header, err := c.FormFile("image")
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Image file is required")
		return
	}
	if header.Size > services.MaxInvitationImageSize {
		utils.RespondWithError(c, http.StatusRequestEntityTooLarge, "Image must be 5MB or smaller")
		return
	}
	file, err := header.Open()
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Failed to read image")
		return
	}
	defer file.Close()

	url, err := wc.Images.Upload(c.Request.Context(), session.OwnerID, session.ID, header.Header.Get("Content-Type"), file)
	if err != nil {
		if errors.Is(err, services.ErrUnsupportedImage) {
			utils.RespondWithError(c, http.StatusUnsupportedMediaType, "Image must be a JPEG, PNG, GIF or WebP file")
			return
		}
		log.Error().Err(err).Str("session", session.ID.String()).Msg("Failed to upload invitation image")
		utils.RespondWithError(c, http.StatusBadGateway, "Failed to upload image")
		return
	}

	// the step may have changed while the upload ran
	updated, ok := wc.mutate(c, func(s *wizard.Session) error {
		return s.Wizard.Merge(wizard.InvitationPatch{InvitationImageURL: &url})
	})
	if !ok {
		if err := wc.Images.Delete(context.WithoutCancel(c.Request.Context()), url); err != nil {
			log.Error().Err(err).Str("session", session.ID.String()).Msg("Failed to delete unused invitation image")
		}
		return
	}
	c.JSON(http.StatusOK, updated.View())
}

// Preview renders the invitation message with example values
func (wc *WizardController) Preview(c *gin.Context) {
	session, ok := wc.load(c)
	if !ok {
		return
	}
	state := session.Wizard.Snapshot()

	c.JSON(http.StatusOK, gin.H{
		"message":      wizard.Preview(state),
		"image_url":    state.InvitationImageURL,
		"placeholders": wizard.PreviewPlaceholders(state),
	})
}

func (wc *WizardController) Next(c *gin.Context) {
	wc.update(c, func(s *wizard.Session) error {
		return s.Wizard.Advance()
	})
}

func (wc *WizardController) Back(c *gin.Context) {
	wc.update(c, func(s *wizard.Session) error {
		return s.Wizard.Retreat()
	})
}

// Launch persists the event from the review step. A failed launch keeps its
// progress in the session so the next call resumes it.
func (wc *WizardController) Launch(c *gin.Context) {
	var result *wizard.Result
	session, ok := wc.mutate(c, func(s *wizard.Session) error {
		var err error
		result, err = s.Launch(c.Request.Context(), wc.Launcher)
		return err
	})
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"event_id":          result.EventID,
		"guests":            result.Guests,
		"launch":            session.Attempt,
		"redirect":          "/events",
		"redirect_after_ms": wc.RedirectDelay.Milliseconds(),
	})
}

// Template downloads the example guest list
func (wc *WizardController) Template(c *gin.Context) {
	c.Header("Content-Disposition", `attachment; filename="`+wizard.TemplateFilename+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(wizard.Template()))
}

// load reads the :id session of the signed-in user.
func (wc *WizardController) load(c *gin.Context) (*wizard.Session, bool) {
	userID, ok := currentUserID(c)
	if !ok {
		return nil, false
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid session ID format")
		return nil, false
	}

	session, err := wc.Sessions.Get(c.Request.Context(), id)
	if err == nil && session.OwnerID != userID {
		err = errNotOwner
	}
	if err != nil {
		respondWizardError(c, nil, err)
		return nil, false
	}
	return session, true
}

// update runs fn through mutate and responds with the session view.
func (wc *WizardController) update(c *gin.Context, fn func(*wizard.Session) error) {
	if session, ok := wc.mutate(c, fn); ok {
		c.JSON(http.StatusOK, session.View())
	}
}

// mutate runs fn on the :id session under the store's write lock and
// responds with the mapped error when it fails.
func (wc *WizardController) mutate(c *gin.Context, fn func(*wizard.Session) error) (*wizard.Session, bool) {
	userID, ok := currentUserID(c)
	if !ok {
		return nil, false
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid session ID format")
		return nil, false
	}

	session, err := wc.Sessions.Update(c.Request.Context(), id, func(s *wizard.Session) error {
		if s.OwnerID != userID {
			return errNotOwner
		}
		return fn(s)
	})
	if err != nil {
		respondWizardError(c, session, err)
		return nil, false
	}
	return session, true
}

func respondWizardError(c *gin.Context, session *wizard.Session, err error) {
	var stepErr *wizard.StepError
	var launchErr *wizard.LaunchError
	switch {
	case errors.Is(err, services.ErrSessionNotFound), errors.Is(err, errNotOwner):
		utils.RespondWithError(c, http.StatusNotFound, "Wizard session not found")
	case errors.As(err, &stepErr):
		utils.RespondWithFields(c, http.StatusUnprocessableEntity, "Please complete the "+stepErr.Step.String()+" step", stepErr.Fields)
	case errors.Is(err, wizard.ErrEmptyFile):
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, wizard.ErrGuestIndex):
		utils.RespondWithError(c, http.StatusNotFound, "Guest not found")
	case errors.As(err, &launchErr):
		status := http.StatusBadGateway
		if errors.Is(err, wizard.ErrDuplicateGuestPhone) {
			status = http.StatusConflict
		}
		body := gin.H{"error": launchErr.Error()}
		if session != nil {
			body["launch"] = session.Attempt
		}
		c.AbortWithStatusJSON(status, body)
	case errors.Is(err, wizard.ErrStepMismatch),
		errors.Is(err, wizard.ErrSessionClosed),
		errors.Is(err, wizard.ErrAlreadyLaunched),
		errors.Is(err, wizard.ErrNotOnReview),
		errors.Is(err, wizard.ErrNoNextStep):
		utils.RespondWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrSessionBusy):
		utils.RespondWithError(c, http.StatusConflict, "Wizard session is being updated, try again")
	default:
		log.Error().Err(err).Msg("Wizard session error")
		utils.RespondWithError(c, http.StatusInternalServerError, "Internal server error")
	}
}

func guestIndex(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid guest index")
		return 0, false
	}
	return index, true
}
