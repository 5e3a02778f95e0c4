// Package domain defines the persistence models for queues, messages, and
// subscriptions. These types are mapped with GORM and form the core data
// layer of the message-queue broker.
package domain

import "time"

// Queue is a logical partition of the message store. Every message and
// subscription belongs to exactly one queue.
type Queue struct {
	ID        int64     `json:"id"         gorm:"primaryKey;autoIncrement"`
	Name      string    `json:"name"       gorm:"type:varchar(128);not null;uniqueIndex:ux_queue_name"`
	CreatedOn time.Time `json:"created_on"`
}

// TableName returns the database table name for Queue.
func (Queue) TableName() string { return "queues" }

// Message is a single produced message row.
//
// Fields:
//   - ID: auto-increment primary key; also the FIFO delivery order within
//     a queue (queries order by id ascending).
//   - QueueID: owning queue (indexed together with status for delivery scans).
//   - SenderID: producer identifier.
//   - MessageID: parent message id for fan-out copies; nil for originals.
//   - SubscriptionID: nil for unaddressed (queue-level) messages; set on
//     fan-out copies addressed to one subscription.
//   - Status: stored lifecycle status (see MessageStatus).
//   - TimesOutOn: lease expiry; meaningful only while RESERVED.
//   - ReservedOn / DeletedOn: transition timestamps, UTC.
//   - MimeType / Body: opaque payload.
type Message struct {
	ID             int64         `json:"id"              gorm:"primaryKey;autoIncrement"`
	QueueID        int64         `json:"queue_id"        gorm:"not null;index:idx_queue_status,priority:1"`
	CreatedOn      time.Time     `json:"created_on"`
	SenderID       int64         `json:"sender_id"`
	MessageID      *int64        `json:"message_id,omitempty"      gorm:"index"`
	SubscriptionID *int64        `json:"subscription_id,omitempty" gorm:"index"`
	Status         MessageStatus `json:"status"          gorm:"not null;default:1;index:idx_queue_status,priority:2"`
	TimesOutOn     *time.Time    `json:"times_out_on,omitempty"`
	ReservedOn     *time.Time    `json:"reserved_on,omitempty"`
	DeletedOn      *time.Time    `json:"deleted_on,omitempty"`
	MimeType       string        `json:"mimetype"        gorm:"column:mimetype;type:varchar(255)"`
	Body           []byte        `json:"body"            gorm:"type:blob"`

	// Subscription is the addressed target for fan-out copies. Nil-able FK;
	// copies survive a subscription soft delete, so no cascade.
	Subscription *Subscription `json:"-" gorm:"foreignKey:SubscriptionID;references:ID"`
}

// TableName returns the database table name for Message.
func (Message) TableName() string { return "messages" }

// Clone materializes a fan-out copy of m addressed to subscriptionID.
//
// The copy preserves queue, sender, MIME type, and body; it gets a zero ID
// (assigned on insert), a parent link back to m, a fresh AVAILABLE status,
// and no timing metadata — CreatedOn is stamped when the copy is persisted,
// not inherited from the source. The receiver is never mutated.
func (m *Message) Clone(subscriptionID int64) *Message {
	parent := m.ID
	body := make([]byte, len(m.Body))
	copy(body, m.Body)
	return &Message{
		QueueID:        m.QueueID,
		SenderID:       m.SenderID,
		MessageID:      &parent,
		SubscriptionID: &subscriptionID,
		Status:         StatusAvailable,
		MimeType:       m.MimeType,
		Body:           body,
	}
}

// Subscription is a durable registration of a subscriber's interest in a
// queue, optionally narrowed by category rules.
//
// Subscriptions are soft-deleted (IsDeleted) rather than removed so that
// historical message associations stay valid.
type Subscription struct {
	ID           int64     `json:"id"            gorm:"primaryKey;autoIncrement"`
	QueueID      int64     `json:"queue_id"      gorm:"not null;index:idx_sub_queue"`
	Label        string    `json:"label"         gorm:"type:varchar(255)"`
	SubscriberID int64     `json:"subscriber_id" gorm:"not null;index"`
	CreatedOn    time.Time `json:"created_on"`
	IsDeleted    bool      `json:"is_deleted"    gorm:"not null;default:false"`

	// Categories are the attached rules. They are replaced wholesale, never
	// mutated in place; removing the subscription removes its rules.
	Categories []SubscriptionCategory `json:"categories" gorm:"foreignKey:SubscriptionID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Subscription.
func (Subscription) TableName() string { return "subscriptions" }

// SubscriptionCategory is one pattern rule attached to a subscription.
// Category supports SQL-LIKE wildcards (% and _); IsException inverts the
// rule into an exclusion test.
type SubscriptionCategory struct {
	ID             int64  `json:"id"              gorm:"primaryKey;autoIncrement"`
	SubscriptionID int64  `json:"subscription_id" gorm:"not null;index"`
	Category       string `json:"category"        gorm:"type:varchar(255);not null"`
	IsException    bool   `json:"is_exception"    gorm:"not null;default:false"`
}

// TableName returns the database table name for SubscriptionCategory.
func (SubscriptionCategory) TableName() string { return "subscription_categories" }
