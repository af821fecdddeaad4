// Package httpapi exposes the registration form as a JSON and multipart HTTP
// endpoint.
package httpapi

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	apperrors "github.com/louisbranch/rawcn/internal/platform/errors"
	"github.com/louisbranch/rawcn/internal/platform/requestctx"
	"github.com/louisbranch/rawcn/internal/platform/timeouts"
	"github.com/louisbranch/rawcn/internal/services/registration/flow"
	"github.com/louisbranch/rawcn/internal/services/registration/form"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
)

const (
	// RegisterPath is the registration endpoint.
	RegisterPath = "/register"

	// MaxRequestBytes bounds a registration body, image included.
	MaxRequestBytes = 10 << 20

	// LangParam selects a locale explicitly and wins over Accept-Language.
	LangParam = "lang"

	fieldIsProducer = "isProducer"
	fieldImage      = "image"
)

// Handler serves registration requests.
type Handler struct {
	registrar flow.Registrar
	logger    *zap.Logger
}

// NewHandler creates a Handler over registrar.
func NewHandler(registrar flow.Registrar, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{registrar: registrar, logger: logger}
}

// RegisterRoutes mounts the registration endpoint on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST "+RegisterPath, h.handleRegister)
}

type registerResponse struct {
	Phase           string `json:"phase"`
	Message         string `json:"message"`
	Code            string `json:"code,omitempty"`
	NextScreen      string `json:"next_screen,omitempty"`
	NavigateAfterMS int64  `json:"navigate_after_ms,omitempty"`
	UID             string `json:"uid,omitempty"`
	Email           string `json:"email,omitempty"`
	IDToken         string `json:"id_token,omitempty"`
	ProfileImage    string `json:"profile_image,omitempty"`
}

type jsonImage struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Data        string `json:"data"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	locale := requestLocale(r)
	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBytes)

	input, isProducer, err := decodeRequest(r)
	if err != nil {
		h.writeDecodeError(w, err, locale)
		return
	}

	ctx, cancel := context.WithTimeout(requestctx.WithLocale(r.Context(), locale), timeouts.Submission)
	defer cancel()

	outcome, err := flow.SubmitOnce(ctx, h.registrar, input, isProducer)
	if err != nil {
		h.logger.Error("submit registration", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, registerResponse{
			Phase:   form.PhaseFailed.String(),
			Message: "registration failed",
		})
		return
	}

	result := outcome.Result
	if !result.OK() {
		code := apperrors.GetCode(result.Err)
		if code == apperrors.CodeUnknown {
			code = apperrors.CodeRegistrationFailed
		}
		writeJSON(w, httpStatus(code), registerResponse{
			Phase:   outcome.State.Phase.String(),
			Message: result.Reason,
			Code:    string(code),
		})
		return
	}

	writeJSON(w, http.StatusCreated, registerResponse{
		Phase:           outcome.State.Phase.String(),
		Message:         result.Reason,
		NextScreen:      outcome.NextScreen,
		NavigateAfterMS: outcome.NavigateAfter.Milliseconds(),
		UID:             result.Identity.UID,
		Email:           result.Identity.Email,
		IDToken:         result.Identity.IDToken,
		ProfileImage:    result.ProfileImageURL,
	})
}

func requestLocale(r *http.Request) string {
	if lang := strings.TrimSpace(r.URL.Query().Get(LangParam)); lang != "" {
		return lang
	}
	if accept := strings.TrimSpace(r.Header.Get("Accept-Language")); accept != "" {
		return accept
	}
	return apperrors.DefaultLocale
}

func (h *Handler) writeDecodeError(w http.ResponseWriter, err error, locale string) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeJSON(w, http.StatusRequestEntityTooLarge, registerResponse{
			Phase:   form.PhaseFailed.String(),
			Message: "request body too large",
		})
		return
	}
	code := apperrors.GetCode(err)
	message := err.Error()
	if code != apperrors.CodeUnknown {
		message = apperrors.LocalizedMessage(err, locale)
	}
	writeJSON(w, http.StatusBadRequest, registerResponse{
		Phase:   form.PhaseFailed.String(),
		Message: message,
		Code:    codeString(code),
	})
}

func decodeRequest(r *http.Request) (form.Input, bool, error) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return form.Input{}, false, fmt.Errorf("parse content type: %w", err)
	}
	switch mediaType {
	case "application/json":
		return decodeJSON(r.Body)
	case "multipart/form-data":
		return decodeMultipart(r)
	default:
		return form.Input{}, false, fmt.Errorf("unsupported content type %q", mediaType)
	}
}

func decodeJSON(body io.Reader) (form.Input, bool, error) {
	var payload map[string]json.RawMessage
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		return form.Input{}, false, fmt.Errorf("decode request: %w", err)
	}

	input := form.NewInput()
	isProducer := false
	fields := make(map[string]string, len(payload))
	for key, raw := range payload {
		switch key {
		case fieldIsProducer:
			if err := json.Unmarshal(raw, &isProducer); err != nil {
				return form.Input{}, false, fmt.Errorf("%s must be a boolean", fieldIsProducer)
			}
		case fieldImage:
			var image *jsonImage
			if err := json.Unmarshal(raw, &image); err != nil {
				return form.Input{}, false, fmt.Errorf("%s must be an object", fieldImage)
			}
			if image == nil {
				continue
			}
			data, err := base64.StdEncoding.DecodeString(image.Data)
			if err != nil || len(data) == 0 {
				return form.Input{}, false, fmt.Errorf("%s.data must be non-empty base64", fieldImage)
			}
			input.Image = &form.LocalImage{Filename: image.Filename, ContentType: image.ContentType, Data: data}
		default:
			var value string
			if err := json.Unmarshal(raw, &value); err != nil {
				return form.Input{}, false, fmt.Errorf("%s must be a string", key)
			}
			fields[key] = value
		}
	}
	if err := input.Apply(fields); err != nil {
		return form.Input{}, false, err
	}
	return input, isProducer, nil
}

func decodeMultipart(r *http.Request) (form.Input, bool, error) {
	if err := r.ParseMultipartForm(MaxRequestBytes); err != nil {
		return form.Input{}, false, fmt.Errorf("parse multipart form: %w", err)
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	input := form.NewInput()
	isProducer := false
	fields := make(map[string]string, len(r.MultipartForm.Value))
	for key, values := range r.MultipartForm.Value {
		if len(values) == 0 {
			continue
		}
		if key == fieldIsProducer {
			parsed, err := strconv.ParseBool(values[0])
			if err != nil {
				return form.Input{}, false, fmt.Errorf("%s must be a boolean", fieldIsProducer)
			}
			isProducer = parsed
			continue
		}
		fields[key] = values[0]
	}
	if err := input.Apply(fields); err != nil {
		return form.Input{}, false, err
	}

	files := r.MultipartForm.File[fieldImage]
	if len(files) > 0 {
		file, err := files[0].Open()
		if err != nil {
			return form.Input{}, false, fmt.Errorf("open %s: %w", fieldImage, err)
		}
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			return form.Input{}, false, fmt.Errorf("read %s: %w", fieldImage, err)
		}
		if len(data) == 0 {
			return form.Input{}, false, fmt.Errorf("%s must be non-empty", fieldImage)
		}
		input.Image = &form.LocalImage{
			Filename:    files[0].Filename,
			ContentType: files[0].Header.Get("Content-Type"),
			Data:        data,
		}
	}
	return input, isProducer, nil
}

func httpStatus(code apperrors.Code) int {
	switch code.GRPCCode() {
	case codes.InvalidArgument:
		return http.StatusBadRequest
	case codes.AlreadyExists:
		return http.StatusConflict
	case codes.NotFound:
		return http.StatusNotFound
	case codes.Unavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func codeString(code apperrors.Code) string {
	if code == apperrors.CodeUnknown {
		return ""
	}
	return string(code)
}

// writeJSON writes JSON responses with a consistent content type.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	_ = encoder.Encode(payload)
}
