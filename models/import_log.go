package models

import "time"

type ImportLog struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	BatchID        string    `json:"batchId" gorm:"uniqueIndex;not null"`
	UserID         uint      `json:"userId" gorm:"index"`
	FileName       string    `json:"fileName"`
	ArchiveURL     string    `json:"archiveUrl,omitempty"`
	RoomsReceived  int       `json:"roomsReceived"`
	RoomsAdded     int       `json:"roomsAdded"`
	EventsReceived int       `json:"eventsReceived"`
	EventsAdded    int       `json:"eventsAdded"`
	LinkedRooms    int       `json:"linkedRooms"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"createdAt"`
}
