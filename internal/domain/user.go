package domain

type User struct {
	ID            int32  `json:"id"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	PointsBalance int64  `json:"points_balance"`
	CreatedOn     string `json:"created_on"`
}
