// Package mainconfig holds AWS SDK initialization shared by the API server
// and the outbox relay.
package mainconfig

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	appconfig "github.com/naijabook/platform/internal/config"
)

// LoadAWSConfig builds the SDK configuration the binaries use to reach the
// scheduling events queue. With AWS_ENDPOINT_URL set, SQS traffic routes to
// that endpoint instead, which is how local stacks and CI run without real
// AWS credentials.
func LoadAWSConfig(ctx context.Context, cfg *appconfig.Config) (aws.Config, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.AWSRegion)}
	if provider, ok := staticCredentials(cfg); ok {
		opts = append(opts, config.WithCredentialsProvider(provider))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, err
	}
	if endpoint := strings.TrimSpace(cfg.AWSEndpointOverride); endpoint != "" {
		awsCfg.EndpointResolverWithOptions = sqsEndpointResolver(endpoint, cfg.AWSRegion)
	}
	return awsCfg, nil
}

// staticCredentials returns an explicit provider when both halves of the key
// pair are configured. Otherwise the SDK default chain applies: environment,
// shared config file, instance role.
func staticCredentials(cfg *appconfig.Config) (aws.CredentialsProvider, bool) {
	key := strings.TrimSpace(cfg.AWSAccessKeyID)
	secret := strings.TrimSpace(cfg.AWSSecretAccessKey)
	if key == "" || secret == "" {
		return nil, false
	}
	return credentials.NewStaticCredentialsProvider(key, secret, ""), true
}

func sqsEndpointResolver(endpoint, region string) aws.EndpointResolverWithOptionsFunc {
	return func(service, _ string, _ ...interface{}) (aws.Endpoint, error) {
		if service != sqs.ServiceID {
			return aws.Endpoint{}, &aws.EndpointNotFoundError{}
		}
		return aws.Endpoint{
			URL:           endpoint,
			PartitionID:   "aws",
			SigningRegion: region,
		}, nil
	}
}
