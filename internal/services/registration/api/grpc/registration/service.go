package registration

import (
	"context"
	"strings"

	apperrors "github.com/louisbranch/rawcn/internal/platform/errors"
	"github.com/louisbranch/rawcn/internal/platform/requestctx"
	"github.com/louisbranch/rawcn/internal/platform/timeouts"
	"github.com/louisbranch/rawcn/internal/services/registration/flow"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// LocaleMetadataKey carries the caller's preferred locale.
const LocaleMetadataKey = "accept-language"

// Service implements RegistrationService.
type Service struct {
	registrar flow.Registrar
	logger    *zap.Logger
}

// NewService creates a RegistrationService over registrar.
func NewService(registrar flow.Registrar, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{registrar: registrar, logger: logger}
}

// Register validates and submits one registration form. Failures come back as
// status errors whose message is the text the form displays.
func (s *Service) Register(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if in == nil {
		return nil, status.Error(codes.InvalidArgument, "register request is required")
	}
	if s.registrar == nil {
		return nil, status.Error(codes.Internal, "registration is not configured")
	}

	locale := localeFromMetadata(ctx)
	ctx = requestctx.WithLocale(ctx, locale)

	input, isProducer, err := decodeRequest(in)
	if err != nil {
		if apperrors.GetCode(err) != apperrors.CodeUnknown {
			return nil, apperrors.HandleError(err, locale)
		}
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	ctx, cancel := context.WithTimeout(ctx, timeouts.Submission)
	defer cancel()

	outcome, err := flow.SubmitOnce(ctx, s.registrar, input, isProducer)
	if err != nil {
		s.logger.Error("submit registration", zap.Error(err))
		return nil, status.Error(codes.Internal, "registration failed")
	}
	if !outcome.Result.OK() {
		return nil, apperrors.HandleErrorWithMessage(outcome.Result.Err, locale, outcome.Result.Reason, apperrors.CodeRegistrationFailed)
	}

	resp, err := encodeOutcome(outcome)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode register response: %v", err)
	}
	return resp, nil
}

func localeFromMetadata(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return apperrors.DefaultLocale
	}
	values := md.Get(LocaleMetadataKey)
	if len(values) == 0 || strings.TrimSpace(values[0]) == "" {
		return apperrors.DefaultLocale
	}
	return strings.TrimSpace(values[0])
}
