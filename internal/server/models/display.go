package models

// PublicChest is the display-facing projection of one publicly showcased
// chest record. This is the shape stored in the display cache.
type PublicChest struct {
	ChestID          int64  `json:"chest_id"`
	RocketID         int64  `json:"rocket_id"`
	RocketName       string `json:"rocket_name"`
	DesignURL        string `json:"design_url"`
	ReceiverType     string `json:"receiver_type"`
	SenderEmail      string `json:"sender_email"`
	ReceiverNickname string `json:"receiver_nickname"`
	Content          string `json:"content"`
	DisplayLocation  int64  `json:"display_location"`
}
