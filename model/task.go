package model

import (
	"time"
)

const (
	StatusPending    = "pending"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

type Task struct {
	TaskID      string    `firestore:"taskid,omitempty"`
	Title       string    `firestore:"title,omitempty"`
	Description string    `firestore:"description,omitempty"`
	Status      string    `firestore:"status,omitempty"`
	Priority    string    `firestore:"priority,omitempty"`
	DueDate     time.Time `firestore:"duedate,omitempty"`
	AssignedTo  string    `firestore:"assignedto,omitempty"`
	CreatedBy   string    `firestore:"createdby,omitempty"`
	Images      []Image   `firestore:"images"`
	Files       []File    `firestore:"files"`
	CreatedAt   time.Time `firestore:"createdat,omitempty"`
	UpdatedAt   time.Time `firestore:"updatedat,omitempty"`
}

// Image and File are attachment records. PublicID is the key of the object
// in remote storage and the only handle needed to delete it.
type Image struct {
	ID         string    `firestore:"id"`
	URL        string    `firestore:"url"`
	PublicID   string    `firestore:"publicid"`
	UploadedAt time.Time `firestore:"uploadedat"`
}

type File struct {
	ID         string    `firestore:"id"`
	URL        string    `firestore:"url"`
	PublicID   string    `firestore:"publicid"`
	FileName   string    `firestore:"filename"`
	FileType   string    `firestore:"filetype"`
	FileSize   int64     `firestore:"filesize"`
	UploadedAt time.Time `firestore:"uploadedat"`
}

func ValidStatus(status string) bool {
	switch status {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

func ValidPriority(priority string) bool {
	switch priority {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}
