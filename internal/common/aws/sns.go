// internal/common/aws/sns.go
package aws

import (
	"context"
	"encoding/json"
	"fmt"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"

	"label-compliance/internal/models"
)

// SNSPublisher is the subset of the SNS API used here.
type SNSPublisher interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSClient wraps the SDK client built from the default credential chain.
type SNSClient struct {
	client SNSPublisher
}

var _ SNSPublisher = (*SNSClient)(nil)

func NewSNSClient(ctx context.Context, region string) (*SNSClient, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return &SNSClient{client: sns.NewFromConfig(cfg)}, nil
}

func (s *SNSClient) Publish(ctx context.Context, input *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	return s.client.Publish(ctx, input, optFns...)
}

// VerdictNotifier publishes compliance verdict summaries to an SNS topic.
type VerdictNotifier struct {
	publisher SNSPublisher
	topicARN  string
}

func NewVerdictNotifier(publisher SNSPublisher, topicARN string) *VerdictNotifier {
	return &VerdictNotifier{publisher: publisher, topicARN: topicARN}
}

// NewVerdictNotifierFromRegion loads default AWS credentials for region.
func NewVerdictNotifierFromRegion(ctx context.Context, region, topicARN string) (*VerdictNotifier, error) {
	client, err := NewSNSClient(ctx, region)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	return NewVerdictNotifier(client, topicARN), nil
}

func (n *VerdictNotifier) NotifyVerdict(ctx context.Context, event models.VerdictEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal verdict event: %w", err)
	}

	status := "NON-COMPLIANT"
	if event.IsCompliant {
		status = "COMPLIANT"
	}

	_, err = n.publisher.Publish(ctx, &sns.PublishInput{
		TopicArn: awssdk.String(n.topicARN),
		Subject:  awssdk.String(fmt.Sprintf("Label compliance: %s", status)),
		Message:  awssdk.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"compliance_status": {
				DataType:    awssdk.String("String"),
				StringValue: awssdk.String(status),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to publish verdict to %s: %w", n.topicARN, err)
	}
	return nil
}
