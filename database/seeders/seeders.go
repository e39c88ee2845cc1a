package seeders

import (
	"fmt"
	"log"
	"time"

	"classbooking_go/database"
	"classbooking_go/models"
)

var defaultTeachers = map[string][]string{
	"台北": {"依珊", "Lisa", "Tina", "Apple", "王小美", "陳大文"},
	"桃園": {"依珊", "Lisa", "周雅婷"},
	"台中": {"Tina", "林巧慧", "張美玲"},
}

var defaultContents = map[string][]string{
	"台北": {"基礎彩妝", "新娘造型", "手部護理", "國考衝刺"},
	"桃園": {"基礎彩妝", "皮膚學概論"},
	"台中": {"整體造型", "基礎彩妝"},
}

// SeedAll populates the registries and the fixed admin-entered courses.
// Safe to run repeatedly: each seeder skips tables that already hold data.
func SeedAll() {
	seedRegistries()
	seedFixedCourses()
}

// seedRegistries loads the default teacher-name and course-content lists.
func seedRegistries() {
	var count int64
	if err := database.DB.Model(&models.RegistryEntry{}).Count(&count).Error; err != nil {
		log.Printf("Seeder: failed to inspect registry table: %v", err)
		return
	}
	if count > 0 {
		return
	}

	var entries []models.RegistryEntry
	for location, names := range defaultTeachers {
		for _, name := range names {
			entries = append(entries, models.RegistryEntry{Kind: "teacher", Location: location, Value: name})
		}
	}
	for location, contents := range defaultContents {
		for _, content := range contents {
			entries = append(entries, models.RegistryEntry{Kind: "content", Location: location, Value: content})
		}
	}

	if err := database.DB.Create(&entries).Error; err != nil {
		log.Printf("Seeder: failed to seed registries: %v", err)
		return
	}
	log.Printf("Seeder: registries seeded (%d entries)", len(entries))
}

// seedFixedCourses pre-fills the admin-entered license classes on the first
// day of the current month, mirroring the manual sheet preparation the
// office used to do.
func seedFixedCourses() {
	var count int64
	if err := database.DB.Model(&models.Reservation{}).Count(&count).Error; err != nil {
		log.Printf("Seeder: failed to inspect reservation table: %v", err)
		return
	}
	if count > 0 {
		return
	}

	now := time.Now()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.Local)
	date := first.Format("2006-01-02")
	period := fmt.Sprintf("%d/%02d", first.Year()-1911, int(first.Month()))

	fixed := []models.Reservation{
		{Period: period, Date: date, Time: "10:00-11:00", Subject: "學科", Location: "台北", OccupiedBy: "執照班(固定)"},
		{Period: period, Date: date, Time: "11:00-12:00", Subject: "學科", Location: "台北", OccupiedBy: "執照班(固定)"},
	}

	if err := database.DB.Create(&fixed).Error; err != nil {
		log.Printf("Seeder: failed to seed fixed courses: %v", err)
		return
	}
	log.Printf("Seeder: fixed courses seeded for %s", date)
}
