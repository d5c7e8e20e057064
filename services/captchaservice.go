package services

import (
	"context"
	"fmt"

	recaptcha "cloud.google.com/go/recaptchaenterprise/v2/apiv1"
	"cloud.google.com/go/recaptchaenterprise/v2/apiv1/recaptchaenterprisepb"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"
)

type Assessment struct {
	Score   float32
	Action  string
	Reasons []string
}

// CaptchaVerifier checks a reCAPTCHA token. A nil Assessment with a nil
// error means the token was rejected.
type CaptchaVerifier interface {
	Verify(ctx context.Context, token, action, userIP, userAgent string) (*Assessment, error)
}

type RecaptchaVerifier struct {
	logger    zerolog.Logger
	client    *recaptcha.Client
	projectID string
	siteKey   string
}

func NewRecaptchaVerifier(ctx context.Context, logger zerolog.Logger, projectID, siteKey, credentialsFile string) (*RecaptchaVerifier, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := recaptcha.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create reCAPTCHA client: %w", err)
	}
	return &RecaptchaVerifier{
		logger:    logger,
		client:    client,
		projectID: projectID,
		siteKey:   siteKey,
	}, nil
}

func (v *RecaptchaVerifier) Close() error {
	return v.client.Close()
}

func (v *RecaptchaVerifier) Verify(ctx context.Context, token, action, userIP, userAgent string) (*Assessment, error) {
	req := &recaptchaenterprisepb.CreateAssessmentRequest{
		Parent: fmt.Sprintf("projects/%s", v.projectID),
		Assessment: &recaptchaenterprisepb.Assessment{
			Event: &recaptchaenterprisepb.Event{
				Token:         token,
				SiteKey:       v.siteKey,
				UserIpAddress: userIP,
				UserAgent:     userAgent,
			},
		},
	}

	response, err := v.client.CreateAssessment(ctx, req)
	if err != nil {
		return nil, withCause(&Error{Kind: KindUpstream, Msg: "Captcha verification unavailable"}, err)
	}

	props := response.TokenProperties
	if props == nil || !props.Valid {
		if props != nil {
			v.logger.Info().Str("reason", props.InvalidReason.String()).Msg("captcha token invalid")
		}
		return nil, nil
	}
	if action != "" && props.Action != action {
		v.logger.Info().
			Str("expected", action).
			Str("got", props.Action).
			Msg("captcha action mismatch")
		return nil, nil
	}

	result := &Assessment{Action: props.Action}
	if response.RiskAnalysis != nil {
		result.Score = response.RiskAnalysis.Score
		for _, reason := range response.RiskAnalysis.Reasons {
			result.Reasons = append(result.Reasons, reason.String())
		}
	}
	return result, nil
}
