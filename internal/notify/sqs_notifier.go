package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/google/uuid"
)

// SQSNotifier đẩy thông báo người dùng lên một queue SQS cho worker gửi
// email/push phía sau. Best-effort: caller chỉ log lỗi, không retry.
type SQSNotifier struct {
	sqsClient *sqs.Client
	queueURL  string
}

func NewSQSNotifier(client *sqs.Client, queueURL string) *SQSNotifier {
	return &SQSNotifier{sqsClient: client, queueURL: queueURL}
}

type notificationMessage struct {
	ID        string    `json:"id"`
	Event     string    `json:"event"`
	Payload   any       `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

func (n *SQSNotifier) Send(ctx context.Context, event string, payload any) error {
	msg := notificationMessage{
		ID:        uuid.NewString(),
		Event:     event,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("lỗi marshal thông báo: %w", err)
	}

	bodyStr := string(body)
	_, err = n.sqsClient.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    &n.queueURL,
		MessageBody: &bodyStr,
	})
	if err != nil {
		return fmt.Errorf("lỗi gửi message lên SQS: %w", err)
	}
	return nil
}

// NoopNotifier dùng khi SQS_NOTIFY_QUEUE_URL chưa được cấu hình.
type NoopNotifier struct{}

func (NoopNotifier) Send(ctx context.Context, event string, payload any) error {
	return nil
}
