package database

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/imyashkale/bigpanda-notifier/internal/config"
	"github.com/imyashkale/bigpanda-notifier/internal/logger"
)

// settingsKey is the partition key of the single settings record
const settingsKey = "global"

// settingsItem is the stored shape of the notifier settings
type settingsItem struct {
	SettingsId string `dynamodbav:"SettingsId"`
	config.NotifierSettings
	UpdatedAt int64 `dynamodbav:"UpdatedAt"`
}

// SettingsOperations stores notifier settings in DynamoDB
type SettingsOperations struct {
	client    *Client
	tableName string
}

// NewSettingsOperations creates a new SettingsOperations instance
func NewSettingsOperations(client *Client, tableName string) *SettingsOperations {
	return &SettingsOperations{
		client:    client,
		tableName: tableName,
	}
}

// GetSettings loads the stored settings, or ErrNotFound
func (so *SettingsOperations) GetSettings(ctx context.Context) (*config.NotifierSettings, error) {
	result, err := so.client.DynamoDB.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(so.tableName),
		Key: map[string]types.AttributeValue{
			"SettingsId": &types.AttributeValueMemberS{Value: settingsKey},
		},
	})
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"table": so.tableName,
			"error": err.Error(),
		}).Error("Failed to get settings from DynamoDB")
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	if len(result.Item) == 0 {
		return nil, ErrNotFound
	}

	var item settingsItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
	}

	return &item.NotifierSettings, nil
}

// PutSettings replaces the stored settings
func (so *SettingsOperations) PutSettings(ctx context.Context, settings config.NotifierSettings) error {
	av, err := attributevalue.MarshalMap(settingsItem{
		SettingsId:       settingsKey,
		NotifierSettings: settings,
		UpdatedAt:        time.Now().Unix(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	_, err = so.client.DynamoDB.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(so.tableName),
		Item:      av,
	})
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"table": so.tableName,
			"error": err.Error(),
		}).Error("Failed to put settings in DynamoDB")
		return fmt.Errorf("failed to save settings: %w", err)
	}

	logger.WithField("table", so.tableName).Info("Settings saved to DynamoDB")
	return nil
}
