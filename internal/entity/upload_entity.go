package entity

import "time"

// Upload is one processed CSV. A nil UserId marks a guest upload.
type Upload struct {
	Id             int64
	UserId         *int64
	Filename       string
	UploadedAt     time.Time
	TotalCount     int
	AvgFlowrate    float64
	AvgPressure    float64
	AvgTemperature float64
	Equipment      []Equipment
}

// OwnedBy reports whether userId (nil for guests) may read the upload.
func (u *Upload) OwnedBy(userId *int64) bool {
	if u.UserId == nil || userId == nil {
		return u.UserId == nil && userId == nil
	}
	return *u.UserId == *userId
}

type Equipment struct {
	Id          int64
	UploadId    int64
	Name        string
	Type        string
	Flowrate    float64
	Pressure    float64
	Temperature float64
}
