// Package domain defines the persistence models for the cafe directory.
// These types are mapped with GORM and form the core data layer of the API.
package domain

// Cafe is a single cafe listing. It is the only record type served by the
// public API.
//
// Fields:
//   - ID: autoincrement primary key assigned by the store; never changes.
//   - Name: display name, unique across all cafes.
//   - MapURL / ImgURL: links to a map location and a photo.
//   - Location: neighbourhood or area; /search matches it exactly.
//   - Seats: free-text capacity descriptor such as "20-30".
//   - HasToilet / HasWifi / HasSockets / CanTakeCalls: amenity flags.
//   - CoffeePrice: optional price label such as "£2.40"; null when unknown.
//
// The JSON names are the public wire contract and are declared here rather
// than derived from column names.
type Cafe struct {
	ID           uint    `json:"id"             gorm:"primaryKey;autoIncrement"`
	Name         string  `json:"name"           gorm:"type:varchar(250);not null;uniqueIndex:ux_cafe_name"`
	MapURL       string  `json:"map_url"        gorm:"type:varchar(500);not null"`
	ImgURL       string  `json:"img_url"        gorm:"type:varchar(500);not null"`
	Location     string  `json:"location"       gorm:"type:varchar(250);not null;index:idx_cafe_location"`
	Seats        string  `json:"seats"          gorm:"type:varchar(250);not null"`
	HasToilet    bool    `json:"has_toilet"     gorm:"not null"`
	HasWifi      bool    `json:"has_wifi"       gorm:"not null"`
	HasSockets   bool    `json:"has_sockets"    gorm:"not null"`
	CanTakeCalls bool    `json:"can_take_calls" gorm:"not null"`
	CoffeePrice  *string `json:"coffee_price"   gorm:"type:varchar(250)"`
}

// TableName returns the database table name for Cafe.
func (Cafe) TableName() string { return "cafe" }
