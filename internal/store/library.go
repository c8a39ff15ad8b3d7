// Package store keeps a SQLite library of imported tax tables so that new
// years or corrected figures can be added without a rebuild.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/taxcalc/internal/taxtable"

	_ "modernc.org/sqlite" // register sqlite driver
)

// ErrYearNotFound is returned when deleting a year the library does not hold.
var ErrYearNotFound = errors.New("year not in table library")

// Library is a SQLite-backed collection of tax years.
type Library struct {
	db *sql.DB
}

// YearInfo summarises one stored year.
type YearInfo struct {
	Year       int       `json:"year"`
	Source     string    `json:"source"`
	ImportedAt time.Time `json:"imported_at"`
	Statuses   int       `json:"statuses"`
	Brackets   int       `json:"brackets"`
}

// Dir returns the platform-appropriate data directory for the library.
func Dir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "taxcalc")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "taxcalc")
}

// DefaultPath returns the full path to the library database.
func DefaultPath() string {
	return filepath.Join(Dir(), "tables.db")
}

// Open opens or creates the library database at the given path.
func Open(dbPath string) (*Library, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating library dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening library db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Library{db: db}, nil
}

// Close closes the library database.
func (l *Library) Close() error {
	return l.db.Close()
}

// SaveYear validates y and stores it, replacing any previous copy of the year.
func (l *Library) SaveYear(y taxtable.Year, source string) error {
	if err := y.Validate(); err != nil {
		return err
	}

	tx, err := l.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	// Replacing the parent row cascades to the child tables.
	if _, err := tx.Exec("DELETE FROM tax_years WHERE year = ?", y.Year); err != nil {
		return err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = tx.Exec(`INSERT INTO tax_years
		(year, social_security_wage_base, social_security_rate, medicare_rate,
		 additional_medicare_rate, additional_medicare_threshold,
		 self_employment_ss_rate, self_employment_medicare_rate, source, imported_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		y.Year, y.SocialSecurityWageBase.String(), y.SocialSecurityRate.String(), y.MedicareRate.String(),
		y.AdditionalMedicareRate.String(), y.AdditionalMedicareThreshold.String(),
		y.SelfEmploymentSocialSecurityRate.String(), y.SelfEmploymentMedicareRate.String(), source, now,
	)
	if err != nil {
		return err
	}

	for status, amount := range y.StandardDeduction {
		_, err = tx.Exec(`INSERT INTO standard_deductions (year, filing_status, amount) VALUES (?, ?, ?)`,
			y.Year, string(status), amount.String())
		if err != nil {
			return err
		}
	}

	for status, bs := range y.Brackets {
		for i, b := range bs {
			var upper sql.NullString
			if b.Max != nil {
				upper = sql.NullString{String: b.Max.String(), Valid: true}
			}
			_, err = tx.Exec(`INSERT INTO brackets
				(year, filing_status, position, rate, min_income, max_income)
				VALUES (?, ?, ?, ?, ?, ?)`,
				y.Year, string(status), i, b.Rate.String(), b.Min.String(), upper,
			)
			if err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// LoadYears reads every stored year, sorted ascending. Years that no longer
// validate are reported as an error rather than skipped.
func (l *Library) LoadYears() ([]taxtable.Year, error) {
	rows, err := l.db.Query(`SELECT
		year, social_security_wage_base, social_security_rate, medicare_rate,
		additional_medicare_rate, additional_medicare_threshold,
		self_employment_ss_rate, self_employment_medicare_rate
		FROM tax_years ORDER BY year`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var years []taxtable.Year
	for rows.Next() {
		var y taxtable.Year
		var wageBase, ss, medicare, addl, threshold, seSS, seMedicare string
		if err := rows.Scan(&y.Year, &wageBase, &ss, &medicare, &addl, &threshold, &seSS, &seMedicare); err != nil {
			return nil, err
		}
		fields := []struct {
			dst *decimal.Decimal
			src string
		}{
			{&y.SocialSecurityWageBase, wageBase},
			{&y.SocialSecurityRate, ss},
			{&y.MedicareRate, medicare},
			{&y.AdditionalMedicareRate, addl},
			{&y.AdditionalMedicareThreshold, threshold},
			{&y.SelfEmploymentSocialSecurityRate, seSS},
			{&y.SelfEmploymentMedicareRate, seMedicare},
		}
		for _, f := range fields {
			if *f.dst, err = decimal.NewFromString(f.src); err != nil {
				return nil, fmt.Errorf("year %d: %w", y.Year, err)
			}
		}
		y.StandardDeduction = make(map[taxtable.FilingStatus]decimal.Decimal)
		y.Brackets = make(map[taxtable.FilingStatus]taxtable.Brackets)
		years = append(years, y)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	yearIdx := make(map[int]int, len(years))
	for i, y := range years {
		yearIdx[y.Year] = i
	}

	if err := l.loadDeductions(years, yearIdx); err != nil {
		return nil, err
	}
	if err := l.loadBrackets(years, yearIdx); err != nil {
		return nil, err
	}

	for _, y := range years {
		if err := y.Validate(); err != nil {
			return nil, fmt.Errorf("stored table: %w", err)
		}
	}
	return years, nil
}

func (l *Library) loadDeductions(years []taxtable.Year, yearIdx map[int]int) error {
	rows, err := l.db.Query("SELECT year, filing_status, amount FROM standard_deductions")
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var year int
		var status, amount string
		if err := rows.Scan(&year, &status, &amount); err != nil {
			return err
		}
		d, err := decimal.NewFromString(amount)
		if err != nil {
			return fmt.Errorf("year %d %s deduction: %w", year, status, err)
		}
		if idx, ok := yearIdx[year]; ok {
			years[idx].StandardDeduction[taxtable.FilingStatus(status)] = d
		}
	}
	return rows.Err()
}

func (l *Library) loadBrackets(years []taxtable.Year, yearIdx map[int]int) error {
	rows, err := l.db.Query(`SELECT year, filing_status, rate, min_income, max_income
		FROM brackets ORDER BY year, filing_status, position`)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var year int
		var status, rate, minIncome string
		var maxIncome sql.NullString
		if err := rows.Scan(&year, &status, &rate, &minIncome, &maxIncome); err != nil {
			return err
		}
		b, err := parseBracket(rate, minIncome, maxIncome)
		if err != nil {
			return fmt.Errorf("year %d %s bracket: %w", year, status, err)
		}
		if idx, ok := yearIdx[year]; ok {
			fs := taxtable.FilingStatus(status)
			years[idx].Brackets[fs] = append(years[idx].Brackets[fs], b)
		}
	}
	return rows.Err()
}

func parseBracket(rate, minIncome string, maxIncome sql.NullString) (taxtable.Bracket, error) {
	var b taxtable.Bracket
	var err error
	if b.Rate, err = decimal.NewFromString(rate); err != nil {
		return b, err
	}
	if b.Min, err = decimal.NewFromString(minIncome); err != nil {
		return b, err
	}
	if maxIncome.Valid {
		m, err := decimal.NewFromString(maxIncome.String)
		if err != nil {
			return b, err
		}
		b.Max = &m
	}
	return b, nil
}

// ListYears returns a summary of each stored year, sorted ascending.
func (l *Library) ListYears() ([]YearInfo, error) {
	rows, err := l.db.Query(`SELECT
		t.year, t.source, t.imported_at,
		(SELECT COUNT(*) FROM standard_deductions d WHERE d.year = t.year),
		(SELECT COUNT(*) FROM brackets b WHERE b.year = t.year)
		FROM tax_years t`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var infos []YearInfo
	for rows.Next() {
		var info YearInfo
		var importedAt string
		if err := rows.Scan(&info.Year, &info.Source, &importedAt, &info.Statuses, &info.Brackets); err != nil {
			return nil, err
		}
		info.ImportedAt, _ = time.Parse(time.RFC3339, importedAt)
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Year < infos[j].Year })
	return infos, rows.Err()
}

// DeleteYear removes a stored year and its brackets.
func (l *Library) DeleteYear(year int) error {
	res, err := l.db.Exec("DELETE FROM tax_years WHERE year = ?", year)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %d", ErrYearNotFound, year)
	}
	return nil
}

// YearCount returns the number of stored years.
func (l *Library) YearCount() (int, error) {
	var count int
	err := l.db.QueryRow("SELECT COUNT(*) FROM tax_years").Scan(&count)
	return count, err
}
