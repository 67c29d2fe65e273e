package model

// Event mirrors one remote program locally. The id is the remote program id,
// so it is the primary key as-is rather than an autoincrement column.
// Timestamp and date attributes are stored as the remote service sends them.
type Event struct {
	ID          uint       `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	CreatedAt   string     `json:"createdAt"`
	UpdatedAt   string     `json:"updatedAt"`
	URL         string     `json:"url" gorm:"column:url"`
	Type        string     `json:"type"`
	Channel     string     `json:"channel"`
	Workspace   string     `json:"workspace"`
	StartDate   string     `json:"startDate"`
	EndDate     string     `json:"endDate"`
	Attendees   []Attendee `json:"users" gorm:"foreignKey:EventID;references:ID;constraint:OnDelete:CASCADE"`
}

// Attendee mirrors one roster member of an Event. The surrogate id exists
// only because SQLite wants a rowid; the logical key is (event_id, user_id)
// and the unique index on it is what makes re-syncing a roster idempotent.
type Attendee struct {
	ID                uint   `json:"-" gorm:"primaryKey"`
	EventID           uint   `json:"event_id" gorm:"uniqueIndex:idx_attendees_event_user"`
	UserID            uint   `json:"user_id" gorm:"uniqueIndex:idx_attendees_event_user"`
	FirstName         string `json:"firstName"`
	LastName          string `json:"lastName"`
	Email             string `json:"email"`
	Company           string `json:"company"`
	Phone             string `json:"phone"`
	Unsubscribed      int    `json:"unsubscribed" gorm:"default:0"`
	ProgressionStatus string `json:"progressionStatus"`
	MembershipDate    string `json:"membershipDate"`
	CreatedAt         string `json:"createdAt"`
	UpdatedAt         string `json:"updatedAt"`
}
