package store

// Decimals are stored as TEXT so rates and bounds round-trip exactly.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS tax_years (
    year                             INTEGER PRIMARY KEY,
    social_security_wage_base        TEXT NOT NULL,
    social_security_rate             TEXT NOT NULL,
    medicare_rate                    TEXT NOT NULL,
    additional_medicare_rate         TEXT NOT NULL,
    additional_medicare_threshold    TEXT NOT NULL,
    self_employment_ss_rate          TEXT NOT NULL,
    self_employment_medicare_rate    TEXT NOT NULL,
    source                           TEXT NOT NULL,
    imported_at                      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS standard_deductions (
    year                 INTEGER NOT NULL REFERENCES tax_years(year) ON DELETE CASCADE,
    filing_status        TEXT NOT NULL,
    amount               TEXT NOT NULL,
    PRIMARY KEY (year, filing_status)
);

CREATE TABLE IF NOT EXISTS brackets (
    year                 INTEGER NOT NULL REFERENCES tax_years(year) ON DELETE CASCADE,
    filing_status        TEXT NOT NULL,
    position             INTEGER NOT NULL,
    rate                 TEXT NOT NULL,
    min_income           TEXT NOT NULL,
    max_income           TEXT,
    PRIMARY KEY (year, filing_status, position)
);

CREATE INDEX IF NOT EXISTS idx_brackets_year ON brackets(year);
`
