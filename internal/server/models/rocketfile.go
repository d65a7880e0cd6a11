package models

import "time"

// RocketFile describes one attachment of a rocket. The binary payload lives
// in object storage under StorageKey; this row only carries metadata.
type RocketFile struct {
	ID           int64
	RocketID     int64
	OriginalName string
	UniqueName   string
	StorageKey   string
	FileType     string
	FileSize     int64
	FileOrder    int
	UploadedAt   time.Time
}

// RocketFileView is the attachment descriptor served in detail views.
// DownloadURL is a short-lived presigned link to the stored object.
type RocketFileView struct {
	FileID       int64
	OriginalName string
	UniqueName   string
	DownloadURL  string
	FileType     string
	FileSize     int64
	FileOrder    int
	UploadedAt   time.Time
}
