package aws

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/require"
)

type fakeSSM struct {
	params map[string]string
	err    error
	input  *ssm.GetParametersInput
}

func (f *fakeSSM) GetParameters(ctx context.Context, in *ssm.GetParametersInput, optFns ...func(*ssm.Options)) (*ssm.GetParametersOutput, error) {
	f.input = in
	if f.err != nil {
		return nil, f.err
	}
	out := &ssm.GetParametersOutput{}
	for _, n := range in.Names {
		if v, ok := f.params[n]; ok {
			out.Parameters = append(out.Parameters, types.Parameter{Name: aws.String(n), Value: aws.String(v)})
		}
	}
	return out, nil
}

func TestFromEnv(t *testing.T) {
	t.Run("resolves relayer key from SSM", func(t *testing.T) {
		t.Setenv("RELAYER_API_KEY", "/sandbox/relayer-key")
		t.Setenv("RELAYER_API_URL", "https://relayer.example.com/api")
		t.Setenv("SENTRY_DSN", "https://key@sentry.example.com/1")
		t.Setenv("SENTRY_ENVIRONMENT", "staging")

		client := &fakeSSM{params: map[string]string{"/sandbox/relayer-key": "sk_test"}}
		cfg := fromEnv(context.Background(), aws.Config{Region: "us-west-2"}, client)

		require.Equal(t, "sk_test", cfg.RelayerAPIKey)
		require.Equal(t, "https://relayer.example.com/api", cfg.RelayerURL.String())
		require.Equal(t, "staging", cfg.SentryEnvironment)
		require.Equal(t, "us-west-2", cfg.Region)
		require.True(t, *client.input.WithDecryption)
	})

	t.Run("panics on missing secret", func(t *testing.T) {
		t.Setenv("RELAYER_API_KEY", "/sandbox/relayer-key")
		t.Setenv("RELAYER_API_URL", "https://relayer.example.com")

		require.PanicsWithValue(t, ErrMissingSecret, func() {
			fromEnv(context.Background(), aws.Config{}, &fakeSSM{})
		})
	})

	t.Run("panics on SSM failure", func(t *testing.T) {
		t.Setenv("RELAYER_API_KEY", "/sandbox/relayer-key")
		t.Setenv("RELAYER_API_URL", "https://relayer.example.com")

		require.Panics(t, func() {
			fromEnv(context.Background(), aws.Config{}, &fakeSSM{err: errors.New("throttled")})
		})
	})

	t.Run("panics on missing env", func(t *testing.T) {
		t.Setenv("RELAYER_API_KEY", "")
		require.Panics(t, func() {
			fromEnv(context.Background(), aws.Config{}, &fakeSSM{})
		})
	})

	t.Run("panics on relative relayer URL", func(t *testing.T) {
		t.Setenv("RELAYER_API_KEY", "/sandbox/relayer-key")
		t.Setenv("RELAYER_API_URL", "relayer.example.com")
		client := &fakeSSM{params: map[string]string{"/sandbox/relayer-key": "sk_test"}}
		require.Panics(t, func() {
			fromEnv(context.Background(), aws.Config{}, client)
		})
	})
}
