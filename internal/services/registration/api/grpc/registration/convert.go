package registration

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/louisbranch/rawcn/internal/services/registration/flow"
	"github.com/louisbranch/rawcn/internal/services/registration/form"
	"google.golang.org/protobuf/types/known/structpb"
)

// Request and response keys beyond the form field names.
const (
	KeyIsProducer       = "isProducer"
	KeyImage            = "image"
	KeyImageFilename    = "filename"
	KeyImageContentType = "contentType"
	KeyImageData        = "data"

	KeyPhase           = "phase"
	KeyMessage         = "message"
	KeyNextScreen      = "nextScreen"
	KeyNavigateAfterMS = "navigateAfterMs"
	KeyUID             = "uid"
	KeyEmail           = "email"
	KeyIDToken         = "idToken"
	KeyProfileImage    = "profileImage"
)

// Request describes one registration on the wire.
type Request struct {
	Fields     map[string]string
	IsProducer bool
	Image      *form.LocalImage
}

// EncodeRequest builds the Struct sent by clients.
func EncodeRequest(req Request) (*structpb.Struct, error) {
	values := make(map[string]any, len(req.Fields)+2)
	for name, value := range req.Fields {
		values[name] = value
	}
	values[KeyIsProducer] = req.IsProducer
	if req.Image != nil {
		values[KeyImage] = map[string]any{
			KeyImageFilename:    req.Image.Filename,
			KeyImageContentType: req.Image.ContentType,
			KeyImageData:        base64.StdEncoding.EncodeToString(req.Image.Data),
		}
	}
	return structpb.NewStruct(values)
}

// decodeRequest reads a Struct into form input. Unknown keys are rejected by
// the form itself.
func decodeRequest(in *structpb.Struct) (form.Input, bool, error) {
	input := form.NewInput()
	isProducer := false
	fields := map[string]string{}
	for key, value := range in.GetFields() {
		switch key {
		case KeyIsProducer:
			flag, ok := value.GetKind().(*structpb.Value_BoolValue)
			if !ok {
				return form.Input{}, false, fmt.Errorf("%s must be a boolean", KeyIsProducer)
			}
			isProducer = flag.BoolValue
		case KeyImage:
			image, err := decodeImage(value)
			if err != nil {
				return form.Input{}, false, err
			}
			input.Image = image
		default:
			text, ok := value.GetKind().(*structpb.Value_StringValue)
			if !ok {
				return form.Input{}, false, fmt.Errorf("%s must be a string", key)
			}
			fields[key] = text.StringValue
		}
	}
	if err := input.Apply(fields); err != nil {
		return form.Input{}, false, err
	}
	return input, isProducer, nil
}

func decodeImage(value *structpb.Value) (*form.LocalImage, error) {
	if _, ok := value.GetKind().(*structpb.Value_NullValue); ok {
		return nil, nil
	}
	image := value.GetStructValue()
	if image == nil {
		return nil, fmt.Errorf("%s must be an object", KeyImage)
	}
	fields := image.GetFields()
	data, err := base64.StdEncoding.DecodeString(fields[KeyImageData].GetStringValue())
	if err != nil {
		return nil, fmt.Errorf("decode %s.%s: %w", KeyImage, KeyImageData, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%s.%s is required", KeyImage, KeyImageData)
	}
	return &form.LocalImage{
		Filename:    strings.TrimSpace(fields[KeyImageFilename].GetStringValue()),
		ContentType: strings.TrimSpace(fields[KeyImageContentType].GetStringValue()),
		Data:        data,
	}, nil
}

// encodeOutcome builds the success response.
func encodeOutcome(outcome flow.Outcome) (*structpb.Struct, error) {
	values := map[string]any{
		KeyPhase:           outcome.State.Phase.String(),
		KeyMessage:         outcome.Result.Reason,
		KeyNextScreen:      outcome.NextScreen,
		KeyNavigateAfterMS: outcome.NavigateAfter.Milliseconds(),
		KeyUID:             outcome.Result.Identity.UID,
		KeyEmail:           outcome.Result.Identity.Email,
		KeyIDToken:         outcome.Result.Identity.IDToken,
	}
	if outcome.Result.ProfileImageURL != "" {
		values[KeyProfileImage] = outcome.Result.ProfileImageURL
	}
	return structpb.NewStruct(values)
}
