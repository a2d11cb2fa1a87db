package formatter

import (
	"log"
	"math"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"labvista/internal/domain"
)

// Formatter shapes a validated analysis document into the dashboard payload
// the frontend renders. The clock and RNG are injectable so trend synthesis
// is deterministic under test.
type Formatter struct {
	now func() time.Time
	rng *rand.Rand
}

// New creates a Formatter using the wall clock and a time-seeded RNG.
func New() *Formatter {
	return &Formatter{
		now: time.Now,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// NewWithClock creates a Formatter with a fixed clock and RNG seed.
func NewWithClock(now func() time.Time, seed int64) *Formatter {
	return &Formatter{
		now: now,
		rng: rand.New(rand.NewSource(seed)),
	}
}

// TestKey derives the trend lookup key for a test name: lowercased with
// spaces removed, e.g. "LDL Cholesterol" -> "ldlcholesterol".
func TestKey(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, " ", ""))
}

// Dashboard converts an analysis document into dashboard data. Results that
// cannot be coerced to a numeric value are logged and skipped.
func (f *Formatter) Dashboard(analysis map[string]interface{}) *domain.DashboardData {
	results := f.Results(analysis)

	trendData := make(map[string][]domain.TrendPoint)
	for _, r := range results {
		if r.TestKey == "" {
			continue
		}
		trendData[r.TestKey] = f.GenerateTrend(r.TestName, r.Value)
	}

	return &domain.DashboardData{
		PatientInfo:    f.patientInfo(asMap(analysis["patientInfo"])),
		LatestResults:  results,
		TestCategories: f.testCategories(asSlice(analysis["testCategories"])),
		TrendData:      trendData,
	}
}

// EmptyDashboard returns the fallback payload used when no analysis data is
// available for a report.
func (f *Formatter) EmptyDashboard() *domain.DashboardData {
	return &domain.DashboardData{
		PatientInfo: domain.PatientInfo{
			ID:           "empty",
			Name:         "No Data",
			LastTestDate: f.now().Format("2006-01-02"),
		},
		LatestResults:  []domain.LabResult{},
		TestCategories: DefaultCategories(),
		TrendData:      map[string][]domain.TrendPoint{},
	}
}

// Results extracts the per-test result rows from an analysis document.
func (f *Formatter) Results(analysis map[string]interface{}) []domain.LabResult {
	raw := asSlice(analysis["latestResults"])
	results := make([]domain.LabResult, 0, len(raw))
	today := f.now().Format("2006-01-02")

	for _, item := range raw {
		entry := asMap(item)
		if entry == nil {
			continue
		}

		name := asString(entry["testName"])
		if name == "" {
			name = "Unknown Test"
		}

		value, ok := coerceFloat(entry["result"])
		if !ok {
			// Null or non-numeric results cannot be charted.
			log.Printf("formatter.Results: skipping %q (non-numeric result %v)", name, entry["result"])
			continue
		}

		refMin, refMax := referenceRange(entry["referenceRange"])

		date := asString(entry["date"])
		if date == "" {
			date = today
		}

		results = append(results, domain.LabResult{
			ID:         uuid.New(),
			TestName:   name,
			TestKey:    TestKey(name),
			Value:      value,
			Unit:       asString(entry["unit"]),
			RefMin:     refMin,
			RefMax:     refMax,
			Status:     flagToStatus(asString(entry["flag"])),
			Category:   categoryOf(asString(entry["category"])),
			ResultDate: date,
		})
	}

	return results
}

// GenerateTrend synthesizes a 12-month history around the current value,
// oldest first. Variation is bounded to ±20% of the value.
func (f *Formatter) GenerateTrend(testName string, current float64) []domain.TrendPoint {
	points := make([]domain.TrendPoint, 0, 12)
	now := f.now()

	for i := 11; i >= 0; i-- {
		date := now.AddDate(0, 0, -30*i).Format("2006-01")

		variation := (f.rng.Float64() - 0.5) * 0.4 * current
		value := math.Max(0, current+variation)

		status := domain.ResultStatusNormal
		if math.Abs(variation) > 0.15*current {
			if variation > 0 {
				status = domain.ResultStatusHigh
			} else {
				status = domain.ResultStatusLow
			}
		}

		points = append(points, domain.TrendPoint{
			Date:     date,
			Value:    math.Round(value*10) / 10,
			TestName: testName,
			Status:   status,
		})
	}

	return points
}

func (f *Formatter) patientInfo(data map[string]interface{}) domain.PatientInfo {
	info := domain.PatientInfo{
		ID:           asString(data["id"]),
		Name:         asString(data["name"]),
		LastTestDate: asString(data["lastTestDate"]),
	}
	if info.ID == "" {
		info.ID = "p_" + uuid.New().String()[:8]
	}
	if info.Name == "" {
		info.Name = "Unknown Patient"
	}
	if info.LastTestDate == "" {
		info.LastTestDate = f.now().Format("2006-01-02")
	}

	if age, ok := coerceFloat(data["age"]); ok {
		n := int(age)
		info.Age = &n
	}
	if gender := asString(data["gender"]); gender != "" {
		info.Gender = &gender
	}
	if dob := asString(data["dateOfBirth"]); dob != "" {
		info.DateOfBirth = &dob
	}

	return info
}

func (f *Formatter) testCategories(raw []interface{}) []domain.TestCategory {
	if len(raw) == 0 {
		return DefaultCategories()
	}

	categories := make([]domain.TestCategory, 0, len(raw))
	for _, item := range raw {
		entry := asMap(item)
		if entry == nil {
			continue
		}

		name := asString(entry["categoryName"])
		if name == "" {
			name = asString(entry["name"])
		}
		if name == "" {
			name = "Unknown Category"
		}

		color := asString(entry["color"])
		if color == "" {
			color = "hsl(var(--chart-primary))"
		}

		var tests []string
		for _, tv := range asSlice(entry["tests"]) {
			switch t := tv.(type) {
			case string:
				tests = append(tests, TestKey(t))
			case map[string]interface{}:
				if tn := asString(t["testName"]); tn != "" {
					tests = append(tests, TestKey(tn))
				}
			}
		}

		categories = append(categories, domain.TestCategory{
			ID:          categoryOf(asString(entry["id"])),
			Name:        name,
			Description: asString(entry["description"]),
			Color:       color,
			Tests:       tests,
		})
	}

	if len(categories) == 0 {
		return DefaultCategories()
	}
	return categories
}

// DefaultCategories is the category catalog used when the analysis provides
// none.
func DefaultCategories() []domain.TestCategory {
	return []domain.TestCategory{
		{
			ID:          domain.CategoryBlood,
			Name:        "Complete Blood Count",
			Description: "Blood cell counts and basic blood chemistry",
			Color:       "hsl(var(--chart-primary))",
			Tests:       []string{"hemoglobin", "hematocrit", "wbc", "platelets"},
		},
		{
			ID:          domain.CategoryLipid,
			Name:        "Lipid Panel",
			Description: "Cholesterol and triglyceride levels",
			Color:       "hsl(var(--chart-secondary))",
			Tests:       []string{"totalcholesterol", "hdl", "ldl", "triglycerides"},
		},
		{
			ID:          domain.CategoryLiver,
			Name:        "Liver Function",
			Description: "Liver enzyme and protein levels",
			Color:       "hsl(var(--chart-tertiary))",
			Tests:       []string{"alt", "ast", "bilirubin", "albumin"},
		},
		{
			ID:          domain.CategoryKidney,
			Name:        "Kidney Function",
			Description: "Kidney function markers",
			Color:       "hsl(var(--chart-quaternary))",
			Tests:       []string{"creatinine", "bun", "gfr"},
		},
	}
}

func flagToStatus(flag string) domain.ResultStatus {
	switch strings.ToLower(flag) {
	case "high":
		return domain.ResultStatusHigh
	case "low":
		return domain.ResultStatusLow
	case "critical":
		return domain.ResultStatusCritical
	default:
		return domain.ResultStatusNormal
	}
}

func categoryOf(id string) domain.CategoryID {
	c := domain.CategoryID(strings.ToLower(id))
	if domain.ValidCategories[c] {
		return c
	}
	return domain.CategoryBlood
}

func referenceRange(v interface{}) (float64, float64) {
	entry := asMap(v)
	if entry == nil {
		return 0, 100
	}
	min, okMin := coerceFloat(entry["min"])
	max, okMax := coerceFloat(entry["max"])
	if !okMin || !okMax {
		return 0, 100
	}
	return min, max
}

func coerceFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		// Models sometimes emit values like "162" or "13.5 g/dL".
		trimmed := strings.TrimSpace(n)
		if i := strings.IndexByte(trimmed, ' '); i > 0 {
			trimmed = trimmed[:i]
		}
		parsed, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

func asMap(v interface{}) map[string]interface{} {
	m, _ := v.(map[string]interface{})
	return m
}

func asSlice(v interface{}) []interface{} {
	s, _ := v.([]interface{})
	return s
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}
