package domain

import (
	"encoding/json"
	"fmt"
	"testing"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newDomainDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	return db
}

func TestTableNames(t *testing.T) {
	if (Cafe{}).TableName() != "cafe" {
		t.Fatalf("Cafe.TableName() = %q; want %q", (Cafe{}).TableName(), "cafe")
	}
	if (Idempotency{}).TableName() != "idempotency" {
		t.Fatalf("Idempotency.TableName() = %q; want %q", (Idempotency{}).TableName(), "idempotency")
	}
}

func TestCafe_JSONFieldNames(t *testing.T) {
	price := "£2.40"
	c := Cafe{
		ID: 7, Name: "Blue Bottle", MapURL: "m", ImgURL: "i", Location: "Downtown",
		Seats: "10-20", HasToilet: true, HasWifi: true, HasSockets: false, CanTakeCalls: true,
		CoffeePrice: &price,
	}
	b, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	want := []string{"id", "name", "map_url", "img_url", "location", "seats",
		"has_toilet", "has_wifi", "has_sockets", "can_take_calls", "coffee_price"}
	if len(got) != len(want) {
		t.Fatalf("expected %d keys, got %d: %v", len(want), len(got), got)
	}
	for _, k := range want {
		if _, ok := got[k]; !ok {
			t.Fatalf("missing key %q in %s", k, b)
		}
	}
	if got["coffee_price"] != "£2.40" || got["has_sockets"] != false {
		t.Fatalf("unexpected values: %s", b)
	}

	// Absent price serializes as null, not omitted.
	c.CoffeePrice = nil
	b, _ = json.Marshal(c)
	got = nil
	_ = json.Unmarshal(b, &got)
	if v, ok := got["coffee_price"]; !ok || v != nil {
		t.Fatalf("coffee_price should be present and null: %s", b)
	}
}

func TestCafe_Migration_UniqueName_AndNotNull(t *testing.T) {
	db := newDomainDB(t)

	if err := db.AutoMigrate(&Cafe{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	m := db.Migrator()
	if !m.HasTable(&Cafe{}) {
		t.Fatalf("expected table cafe")
	}
	if !m.HasIndex(&Cafe{}, "ux_cafe_name") {
		t.Fatalf("expected unique index ux_cafe_name")
	}
	if !m.HasIndex(&Cafe{}, "idx_cafe_location") {
		t.Fatalf("expected index idx_cafe_location")
	}

	c1 := &Cafe{Name: "A", MapURL: "m", ImgURL: "i", Location: "L", Seats: "5"}
	if err := db.Create(c1).Error; err != nil {
		t.Fatalf("insert: %v", err)
	}
	if c1.ID == 0 {
		t.Fatalf("expected store-assigned id")
	}

	dup := &Cafe{Name: "A", MapURL: "m2", ImgURL: "i2", Location: "L2", Seats: "6"}
	if err := db.Create(dup).Error; err == nil {
		t.Fatalf("expected unique violation on name")
	}

	err := db.Exec(`INSERT INTO cafe (name, map_url, img_url, location, seats, has_toilet, has_wifi, has_sockets, can_take_calls)
		VALUES (?,?,?,?,?,?,?,?,?)`, "B", nil, "i", "L", "5", false, false, false, false).Error
	if err == nil {
		t.Fatalf("expected NOT NULL violation on map_url")
	}

	// coffee_price is nullable.
	err = db.Exec(`INSERT INTO cafe (name, map_url, img_url, location, seats, has_toilet, has_wifi, has_sockets, can_take_calls, coffee_price)
		VALUES (?,?,?,?,?,?,?,?,?,?)`, "C", "m", "i", "L", "5", false, false, false, false, nil).Error
	if err != nil {
		t.Fatalf("null coffee_price should be accepted: %v", err)
	}
}
