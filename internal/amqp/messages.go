package amqp

import (
	"encoding/json"
	"errors"
	"time"
)

// RolloverMessage announces one materialised subscription occurrence.
// Consumers load the records themselves; the message carries only ids.
type RolloverMessage struct {
	ArchivedID    string    `json:"archivedId"`
	TransactionID string    `json:"transactionId"`
	DueDate       time.Time `json:"dueDate"`
	Timestamp     time.Time `json:"timestamp"`
}

func NewRolloverMessage(archivedID, transactionID string, dueDate time.Time) *RolloverMessage {
	return &RolloverMessage{
		ArchivedID:    archivedID,
		TransactionID: transactionID,
		DueDate:       dueDate,
		Timestamp:     time.Now(),
	}
}

func (m *RolloverMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RolloverMessageFromJSON decodes a message and rejects one missing either id.
func RolloverMessageFromJSON(data []byte) (*RolloverMessage, error) {
	var msg RolloverMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.ArchivedID == "" {
		return nil, errors.New("rollover message without archivedId")
	}
	if msg.TransactionID == "" {
		return nil, errors.New("rollover message without transactionId")
	}
	return &msg, nil
}
