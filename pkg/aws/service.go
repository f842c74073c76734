package aws

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// ErrMissingSecret means that the value returned from Secrets was empty
var ErrMissingSecret = errors.New("missing value for secret")

func mustGetEnv(envVar string) string {
	value := os.Getenv(envVar)
	if len(value) == 0 {
		panic(fmt.Errorf("missing env var: %s", envVar))
	}
	return value
}

// Config describes the environment of the relayer proxy lambda.
type Config struct {
	aws.Config
	// RelayerURL is the base URL of the transaction relayer API.
	RelayerURL *url.URL
	// RelayerAPIKey is the bearer token sent to the relayer. It is read from
	// the SSM parameter named by RELAYER_API_KEY.
	RelayerAPIKey     string
	SentryDSN         string
	SentryEnvironment string
}

// SSMParameterGetter is the subset of the SSM client used to resolve secrets.
type SSMParameterGetter interface {
	GetParameters(ctx context.Context, params *ssm.GetParametersInput, optFns ...func(*ssm.Options)) (*ssm.GetParametersOutput, error)
}

func mustGetSSMParams(ctx context.Context, client SSMParameterGetter, names ...string) map[string]string {
	response, err := client.GetParameters(ctx, &ssm.GetParametersInput{
		Names:          names,
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		panic(fmt.Errorf("retrieving SSM parameters: %w", err))
	}
	params := map[string]string{}
	for _, name := range names {
		value := ""
		for _, p := range response.Parameters {
			if p.Name != nil && *p.Name == name && p.Value != nil {
				value = *p.Value
				break
			}
		}
		if value == "" {
			panic(ErrMissingSecret)
		}
		params[name] = value
	}
	return params
}

// FromEnv constructs the AWS Configuration from the environment
func FromEnv(ctx context.Context) Config {
	awsConfig, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		panic(fmt.Errorf("loading aws default config: %w", err))
	}
	return fromEnv(ctx, awsConfig, ssm.NewFromConfig(awsConfig))
}

func fromEnv(ctx context.Context, awsConfig aws.Config, ssmClient SSMParameterGetter) Config {
	keyParam := mustGetEnv("RELAYER_API_KEY")
	secrets := mustGetSSMParams(ctx, ssmClient, keyParam)

	relayerURL, err := url.Parse(mustGetEnv("RELAYER_API_URL"))
	if err != nil {
		panic(fmt.Errorf("parsing relayer API URL: %w", err))
	}
	if relayerURL.Scheme == "" || relayerURL.Host == "" {
		panic(fmt.Errorf("relayer API URL must be absolute: %s", relayerURL))
	}

	return Config{
		Config:            awsConfig,
		RelayerURL:        relayerURL,
		RelayerAPIKey:     secrets[keyParam],
		SentryDSN:         os.Getenv("SENTRY_DSN"),
		SentryEnvironment: os.Getenv("SENTRY_ENVIRONMENT"),
	}
}
