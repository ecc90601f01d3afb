package ddbsdk

import (
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// ttlDDB encodes an expiry the way DynamoDB's time to live expects it:
// epoch seconds in a number attribute.
func ttlDDB(expiry time.Time) *types.AttributeValueMemberN {
	return &types.AttributeValueMemberN{
		Value: fmt.Sprintf("%d", expiry.Unix()),
	}
}

func missingTTLKey(tableName string) error {
	return fmt.Errorf("table %q has no time to live attribute configured", tableName)
}
