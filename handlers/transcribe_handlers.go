package handlers

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Yuki-bach/ditationable/internal/transcriber"
	"github.com/Yuki-bach/ditationable/models"
	"github.com/Yuki-bach/ditationable/utils"
)

// validAudioTypes is the content-type allow-list for uploaded audio.
var validAudioTypes = map[string]bool{
	"audio/wav":   true,
	"audio/mp3":   true,
	"audio/mpeg":  true,
	"audio/aiff":  true,
	"audio/aac":   true,
	"audio/ogg":   true,
	"audio/flac":  true,
	"audio/mp4":   true,
	"audio/x-m4a": true,
}

// transcribeParams carries the non-file form fields of a transcription
// request through validation.
type transcribeParams struct {
	APIKey       string `validate:"required"`
	SystemPrompt string
	SpeakerCount int `validate:"gte=1"`
}

// TranscribeAudio handles POST /transcribe: multipart audio plus options in,
// speaker-labeled timestamped transcript out.
func (h *ApplicationHandler) TranscribeAudio(c *fiber.Ctx) error {
	// Admission check comes first; a rejected caller never reaches the
	// provider.
	if !h.Limiter.Allow(c.IP(), h.RateLimit.MaxRequests, h.RateLimit.Window) {
		return utils.RespondWithError(c, fiber.StatusTooManyRequests, "Too many requests. Please try again later.")
	}

	audioFile, fileErr := c.FormFile("audio")
	apiKey := utils.SanitizeInput(c.FormValue("apiKey"))
	if fileErr != nil || apiKey == "" {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Missing required fields: audio file and API key")
	}

	speakerCount, err := strconv.Atoi(c.FormValue("speakerCount", "2"))
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "speakerCount must be an integer")
	}

	params := transcribeParams{
		APIKey:       apiKey,
		SystemPrompt: c.FormValue("systemPrompt"),
		SpeakerCount: speakerCount,
	}
	if err := h.Validator.Struct(params); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, utils.FormatValidationErrors(err))
	}

	contentType := audioFile.Header.Get("Content-Type")
	if !validAudioTypes[contentType] {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid audio file type")
	}

	// The pipeline works on a local file; the upload is staged in the temp
	// directory for the lifetime of this request only.
	audioPath := filepath.Join(os.TempDir(), "upload-"+uuid.NewString()+filepath.Ext(audioFile.Filename))
	if err := c.SaveFile(audioFile, audioPath); err != nil {
		h.Logger.WithField("error", err.Error()).Error("Failed to stage uploaded audio")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Failed to read uploaded audio")
	}
	defer os.Remove(audioPath)

	if !h.Service.ValidateKey(c.UserContext(), apiKey) {
		return utils.RespondWithError(c, fiber.StatusUnauthorized, "Invalid API key")
	}

	requestID, _ := c.Locals("requestid").(string)
	h.Logger.WithFields(map[string]interface{}{
		"request_id":    requestID,
		"filename":      audioFile.Filename,
		"size_bytes":    audioFile.Size,
		"content_type":  contentType,
		"speaker_count": params.SpeakerCount,
	}).Info("Starting transcription")

	result, err := h.Service.Transcribe(c.UserContext(), transcriber.Request{
		AudioPath: audioPath,
		MIMEType:  contentType,
		Options: models.TranscriptionOptions{
			APIKey:       params.APIKey,
			SystemPrompt: params.SystemPrompt,
			SpeakerCount: params.SpeakerCount,
		},
		OnProgress: func(stage string, fraction float64) {
			h.Logger.WithFields(map[string]interface{}{
				"request_id": requestID,
				"stage":      stage,
				"progress":   fmt.Sprintf("%.0f%%", fraction*100),
			}).Debug("Transcription progress")
		},
	})
	if err != nil {
		h.Logger.WithFields(map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Transcription failed")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, err.Error())
	}

	return c.Status(fiber.StatusOK).JSON(result)
}
