package render

import (
	"fmt"
	"time"

	"github.com/itsatony/roomwatch/internal/models"
)

// Card is one summary tile
type Card struct {
	Sensor    models.SensorType
	Label     string
	Value     string
	Timestamp string
}

var cardLabels = []struct {
	sensor models.SensorType
	label  string
}{
	{models.DoorSensor, "Sensor Pintu"},
	{models.MotionSensor, "Sensor Gerak"},
}

// BuildCards returns the door and motion cards. Unknown readings show placeholder.
func BuildCards(latest models.LatestReadings, loc *time.Location, placeholder string) []Card {
	cards := make([]Card, 0, len(cardLabels))
	for _, c := range cardLabels {
		card := Card{Sensor: c.sensor, Label: c.label, Value: placeholder, Timestamp: placeholder}
		if r := latest.For(c.sensor); r != nil {
			card.Value = string(r.Value)
			card.Timestamp = FormatTimestamp(r.CreatedAt, loc)
		}
		cards = append(cards, card)
	}
	return cards
}

var (
	weekdays = [...]string{"Minggu", "Senin", "Selasa", "Rabu", "Kamis", "Jumat", "Sabtu"}
	months   = [...]string{"Januari", "Februari", "Maret", "April", "Mei", "Juni", "Juli", "Agustus", "September", "Oktober", "November", "Desember"}
)

// FormatTimestamp renders t as an Indonesian long date, e.g. "Senin, 2 Juni 2025 15.02.00 WIB"
func FormatTimestamp(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	zone, _ := t.Zone()
	return fmt.Sprintf("%s, %d %s %d %02d.%02d.%02d %s",
		weekdays[t.Weekday()], t.Day(), months[t.Month()-1], t.Year(),
		t.Hour(), t.Minute(), t.Second(), zone)
}
