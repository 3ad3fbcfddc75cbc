package model

import "time"

// Announcement は企業ユーザーが掲載する求人情報を表す。
// CreatedByは作成後に変更されない。
type Announcement struct {
	ID          string
	Title       string
	Company     string
	Description string
	Location    string
	PublishedAt time.Time
	CreatedBy   string

	// Owner は読み出し時にJOINで埋められる掲載者情報。書き込み時は無視される。
	Owner *UserSummary
}

// Application は求職者による求人への応募を表す。
// (AnnouncementID, ApplicantID) の組は一意。
type Application struct {
	ID             string
	AnnouncementID string
	ApplicantID    string
	ApplicantEmail string
	Message        string
	SubmittedAt    time.Time

	// 読み出し時にJOINで埋められる関連情報
	Announcement *Announcement
	Applicant    *UserSummary
}
