package seeder

import (
	"fmt"

	"github.com/jaswdr/faker"
	"github.com/sirupsen/logrus"
	"github.com/steamtestpanel/steam-test-panel/internal/schema"
	"github.com/steamtestpanel/steam-test-panel/internal/store"
)

// Seeder fills the panel tables with plausible demo data so a fresh
// install has something to browse
type Seeder struct {
	Store      *store.Store
	Inspector  *schema.Inspector
	NumUsers   int
	NumReports int
	Faker      faker.Faker
	Logger     *logrus.Logger

	userIDs    []int64
	versionIDs []int64
	reportIDs  []int64
	tagIDs     []int64
}

// NewSeeder creates a new seeder
func NewSeeder(st *store.Store, inspector *schema.Inspector, numUsers, numReports int, logger *logrus.Logger) *Seeder {
	return &Seeder{
		Store:      st,
		Inspector:  inspector,
		NumUsers:   numUsers,
		NumReports: numReports,
		Faker:      faker.New(),
		Logger:     logger,
	}
}

var testKeys = []string{
	"login", "store_purchase", "friends_list", "chat", "overlay",
	"cloud_save", "achievements", "downloads", "big_picture", "controller",
}

var reportStatuses = []string{"open", "in_review", "closed"}

// seedFuncs maps the tables seeded directly to their seed steps. The
// remaining tables are filled as side effects of these (results, comments,
// retests and tag assignments ride along with reports; notifications with
// versions).
func (sd *Seeder) seedFuncs() map[string]func() error {
	return map[string]func() error{
		"users":           sd.seedUsers,
		"client_versions": sd.seedVersions,
		"report_tags":     sd.seedTags,
		"reports":         sd.seedReports,
		"test_templates":  sd.seedTemplates,
		"invite_codes":    sd.seedInvites,
		"site_settings":   sd.seedSettings,
	}
}

// plan filters the inspector's foreign-key-aware table order down to the
// tables that have a seed step, preserving the order
func (sd *Seeder) plan() []string {
	funcs := sd.seedFuncs()
	var tables []string
	for _, table := range sd.Inspector.InsertionOrder() {
		if _, ok := funcs[table]; ok {
			tables = append(tables, table)
		}
	}
	return tables
}

// Run seeds the database. Tables are visited in foreign key order so
// every row can reference rows inserted before it.
func (sd *Seeder) Run() error {
	if err := sd.Inspector.Inspect(); err != nil {
		return err
	}

	seedFuncs := sd.seedFuncs()
	for _, table := range sd.plan() {
		sd.Logger.Infof("Seeding table: %s", table)
		if err := seedFuncs[table](); err != nil {
			sd.Logger.Errorf("Error seeding table %s: %v", table, err)
			return err
		}
	}

	sd.Logger.Infof("Seeded %d users, %d versions, %d reports",
		len(sd.userIDs), len(sd.versionIDs), len(sd.reportIDs))
	return nil
}

func (sd *Seeder) seedUsers() error {
	admin, err := sd.Store.CreateUser("admin", "admin@example.com", "admin")
	if err != nil {
		return err
	}
	sd.userIDs = append(sd.userIDs, admin.ID)

	for i := 0; i < sd.NumUsers; i++ {
		username := fmt.Sprintf("%s%d", sd.Faker.Internet().User(), i)
		user, err := sd.Store.CreateUser(username, sd.Faker.Internet().Email(), "tester")
		if err != nil {
			return err
		}
		sd.userIDs = append(sd.userIDs, user.ID)
	}
	return nil
}

func (sd *Seeder) seedVersions() error {
	for i := 0; i < 3; i++ {
		version := fmt.Sprintf("1.%d.%d", i, sd.Faker.IntBetween(0, 9))
		markCurrent := i == 2
		v, err := sd.Store.CreateVersion(version, "beta", markCurrent)
		if err != nil {
			return err
		}
		sd.versionIDs = append(sd.versionIDs, v.ID)
	}
	return nil
}

func (sd *Seeder) seedTags() error {
	for _, name := range []string{"crash", "ui", "regression", "performance"} {
		tag, err := sd.Store.CreateTag(name, sd.Faker.Color().Hex())
		if err != nil {
			return err
		}
		sd.tagIDs = append(sd.tagIDs, tag.ID)
	}
	return nil
}

func (sd *Seeder) seedReports() error {
	if len(sd.userIDs) == 0 || len(sd.versionIDs) == 0 {
		sd.Logger.Warning("No users or versions seeded, skipping reports")
		return nil
	}

	for i := 0; i < sd.NumReports; i++ {
		reporterID := sd.pick(sd.userIDs)
		versionID := sd.pick(sd.versionIDs)

		report, err := sd.Store.CreateReport(
			sd.Faker.Lorem().Sentence(5),
			sd.Faker.Lorem().Paragraph(2),
			reporterID,
			&versionID,
		)
		if err != nil {
			return err
		}
		sd.reportIDs = append(sd.reportIDs, report.ID)

		for j := 0; j < sd.Faker.IntBetween(2, 5); j++ {
			key := testKeys[sd.Faker.IntBetween(0, len(testKeys)-1)]
			result := "pass"
			if sd.Faker.IntBetween(0, 3) == 0 {
				result = "fail"
			}
			if err := sd.Store.SetTestResult(report.ID, key, result, sd.Faker.Lorem().Sentence(8)); err != nil {
				return err
			}
			if result == "fail" {
				if _, err := sd.Store.CreateRetestRequest(report.ID, key, reporterID); err != nil {
					return err
				}
			}
		}

		if _, err := sd.Store.AddComment(report.ID, sd.pick(sd.userIDs), sd.Faker.Lorem().Sentence(10)); err != nil {
			return err
		}
		if err := sd.Store.AssignTag(report.ID, sd.pick(sd.tagIDs)); err != nil {
			return err
		}

		status := reportStatuses[sd.Faker.IntBetween(0, len(reportStatuses)-1)]
		if status != "open" {
			if _, err := sd.Store.UpdateReportStatus(report.ID, status, sd.pick(sd.userIDs)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (sd *Seeder) seedTemplates() error {
	if len(sd.userIDs) == 0 {
		sd.Logger.Warning("No users seeded, skipping templates")
		return nil
	}

	for _, name := range []string{"Smoke test", "Full regression"} {
		body := ""
		for _, key := range testKeys[:5] {
			body += "- " + key + "\n"
		}
		if _, err := sd.Store.CreateTemplate(name, sd.Faker.Lorem().Sentence(6), body, sd.userIDs[0]); err != nil {
			return err
		}
	}
	return nil
}

func (sd *Seeder) seedInvites() error {
	if len(sd.userIDs) == 0 {
		sd.Logger.Warning("No users seeded, skipping invites")
		return nil
	}

	for i := 0; i < 3; i++ {
		if _, err := sd.Store.CreateInvite(sd.userIDs[0], "tester"); err != nil {
			return err
		}
	}
	return nil
}

func (sd *Seeder) seedSettings() error {
	settings := map[string]string{
		"panel_title":       "Steam Test Panel",
		"reports_per_page":  "25",
		"allow_anon_export": "false",
	}
	for name, value := range settings {
		if err := sd.Store.SetSetting(name, value); err != nil {
			return err
		}
	}
	return nil
}

// pick returns a random element of ids, or 0 when ids is empty
func (sd *Seeder) pick(ids []int64) int64 {
	if len(ids) == 0 {
		return 0
	}
	return ids[sd.Faker.IntBetween(0, len(ids)-1)]
}
