package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/rakesh-tirumalaparapu/zipp/internal/application/models"
	"github.com/rakesh-tirumalaparapu/zipp/internal/platform/postgres"
	id "github.com/rakesh-tirumalaparapu/zipp/pkg/domain"
	"github.com/rakesh-tirumalaparapu/zipp/pkg/platform/sentinel"
	txcontext "github.com/rakesh-tirumalaparapu/zipp/pkg/platform/tx"
)

const applicationSelect = `
	SELECT a.id, a.number, a.customer_id, a.customer_name, a.status, a.submitted_date, a.updated_at,
		p.first_name, p.middle_name, p.last_name, p.phone_number, p.email_address,
		p.current_address, p.permanent_address, p.marital_status, p.gender, p.date_of_birth, p.age,
		p.aadhaar_number, p.pan_number, p.passport_number, p.father_name, p.education_details,
		e.occupation_type, e.employer_or_business_name, e.designation, e.total_work_experience_years, e.office_address,
		l.loan_type, l.loan_amount, l.loan_duration_months, l.purpose_of_loan,
		x.has_existing_loans, x.existing_loan_type, x.lender_name, x.outstanding_amount, x.monthly_emi, x.tenure_remaining_months
	FROM applications a
	JOIN personal_details p ON p.application_id = a.id
	JOIN employment_details e ON e.application_id = a.id
	JOIN loan_details l ON l.application_id = a.id
	JOIN existing_loan_details x ON x.application_id = a.id`

const newestFirst = ` ORDER BY a.submitted_date DESC, a.id DESC`

// PostgresApplicationStore persists applications across the application and
// detail tables. Writes join the transaction carried in ctx.
type PostgresApplicationStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresApplicationStore {
	return &PostgresApplicationStore{db: db}
}

// Create inserts the application row and its details. A taken number returns
// sentinel.ErrAlreadyUsed without aborting the surrounding transaction.
func (s *PostgresApplicationStore) Create(ctx context.Context, app *models.Application) error {
	exec := txcontext.Executor(ctx, s.db)
	err := exec.QueryRowContext(ctx, `
		INSERT INTO applications (number, customer_id, customer_name, status, submitted_date, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (number) DO NOTHING
		RETURNING id
	`, app.Number, app.CustomerID.String(), app.CustomerName, string(app.Status), app.SubmittedDate.Time, app.UpdatedAt).Scan(&app.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || postgres.IsUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert application: %w", err)
	}
	return s.SaveDetails(ctx, app)
}

func (s *PostgresApplicationStore) FindByNumber(ctx context.Context, number string) (*models.Application, error) {
	return s.findOne(ctx, applicationSelect+` WHERE a.number = $1`, number)
}

// FindByNumberForUpdate locks the application row until the transaction ends.
func (s *PostgresApplicationStore) FindByNumberForUpdate(ctx context.Context, number string) (*models.Application, error) {
	return s.findOne(ctx, applicationSelect+` WHERE a.number = $1 FOR UPDATE OF a`, number)
}

func (s *PostgresApplicationStore) findOne(ctx context.Context, query, number string) (*models.Application, error) {
	exec := txcontext.Executor(ctx, s.db)
	app, err := scanApplication(exec.QueryRowContext(ctx, query, number))
	if err != nil {
		return nil, err
	}
	refs, err := s.references(ctx, app.ID)
	if err != nil {
		return nil, err
	}
	app.References = refs
	return app, nil
}

func (s *PostgresApplicationStore) Update(ctx context.Context, app *models.Application) error {
	res, err := txcontext.Executor(ctx, s.db).ExecContext(ctx, `
		UPDATE applications SET status = $1, submitted_date = $2, updated_at = $3 WHERE id = $4
	`, string(app.Status), app.SubmittedDate.Time, app.UpdatedAt, app.ID)
	if err != nil {
		return fmt.Errorf("update application: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// SaveDetails upserts the 1:1 detail rows and replaces the references.
func (s *PostgresApplicationStore) SaveDetails(ctx context.Context, app *models.Application) error {
	exec := txcontext.Executor(ctx, s.db)
	p, e, l, x := app.Personal, app.Employment, app.Loan, app.ExistingLoan

	if _, err := exec.ExecContext(ctx, `
		INSERT INTO personal_details (application_id, first_name, middle_name, last_name, phone_number, email_address,
			current_address, permanent_address, marital_status, gender, date_of_birth, age,
			aadhaar_number, pan_number, passport_number, father_name, education_details)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (application_id) DO UPDATE SET
			first_name = EXCLUDED.first_name, middle_name = EXCLUDED.middle_name, last_name = EXCLUDED.last_name,
			phone_number = EXCLUDED.phone_number, email_address = EXCLUDED.email_address,
			current_address = EXCLUDED.current_address, permanent_address = EXCLUDED.permanent_address,
			marital_status = EXCLUDED.marital_status, gender = EXCLUDED.gender,
			date_of_birth = EXCLUDED.date_of_birth, age = EXCLUDED.age,
			aadhaar_number = EXCLUDED.aadhaar_number, pan_number = EXCLUDED.pan_number,
			passport_number = EXCLUDED.passport_number, father_name = EXCLUDED.father_name,
			education_details = EXCLUDED.education_details
	`, app.ID, p.FirstName, p.MiddleName, p.LastName, p.PhoneNumber, p.EmailAddress,
		p.CurrentAddress, p.PermanentAddress, string(p.MaritalStatus), string(p.Gender), p.DateOfBirth.Time, p.Age,
		p.AadhaarNumber, p.PANNumber, p.PassportNumber, p.FatherName, p.EducationDetails); err != nil {
		return fmt.Errorf("upsert personal details: %w", err)
	}

	if _, err := exec.ExecContext(ctx, `
		INSERT INTO employment_details (application_id, occupation_type, employer_or_business_name, designation,
			total_work_experience_years, office_address)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (application_id) DO UPDATE SET
			occupation_type = EXCLUDED.occupation_type, employer_or_business_name = EXCLUDED.employer_or_business_name,
			designation = EXCLUDED.designation, total_work_experience_years = EXCLUDED.total_work_experience_years,
			office_address = EXCLUDED.office_address
	`, app.ID, string(e.OccupationType), e.EmployerOrBusinessName, e.Designation, e.TotalWorkExperienceYears, e.OfficeAddress); err != nil {
		return fmt.Errorf("upsert employment details: %w", err)
	}

	if _, err := exec.ExecContext(ctx, `
		INSERT INTO loan_details (application_id, loan_type, loan_amount, loan_duration_months, purpose_of_loan)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (application_id) DO UPDATE SET
			loan_type = EXCLUDED.loan_type, loan_amount = EXCLUDED.loan_amount,
			loan_duration_months = EXCLUDED.loan_duration_months, purpose_of_loan = EXCLUDED.purpose_of_loan
	`, app.ID, string(l.LoanType), l.LoanAmount, l.LoanDurationMonths, l.PurposeOfLoan); err != nil {
		return fmt.Errorf("upsert loan details: %w", err)
	}

	if _, err := exec.ExecContext(ctx, `
		INSERT INTO existing_loan_details (application_id, has_existing_loans, existing_loan_type, lender_name,
			outstanding_amount, monthly_emi, tenure_remaining_months)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (application_id) DO UPDATE SET
			has_existing_loans = EXCLUDED.has_existing_loans, existing_loan_type = EXCLUDED.existing_loan_type,
			lender_name = EXCLUDED.lender_name, outstanding_amount = EXCLUDED.outstanding_amount,
			monthly_emi = EXCLUDED.monthly_emi, tenure_remaining_months = EXCLUDED.tenure_remaining_months
	`, app.ID, x.HasExistingLoans, nullString(x.ExistingLoanType), nullString(x.LenderName),
		nullDecimal(x.OutstandingAmount), nullDecimal(x.MonthlyEMI), nullInt(x.TenureRemainingMonths)); err != nil {
		return fmt.Errorf("upsert existing loan details: %w", err)
	}

	if _, err := exec.ExecContext(ctx, `DELETE FROM application_references WHERE application_id = $1`, app.ID); err != nil {
		return fmt.Errorf("clear references: %w", err)
	}
	for _, r := range app.References {
		if _, err := exec.ExecContext(ctx, `
			INSERT INTO application_references (application_id, reference_number, name, relationship, contact_number, address)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, app.ID, r.ReferenceNumber, r.Name, r.Relationship, r.ContactNumber, r.Address); err != nil {
			return fmt.Errorf("insert reference: %w", err)
		}
	}
	return nil
}

func (s *PostgresApplicationStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := txcontext.Executor(ctx, s.db).QueryRowContext(ctx, `SELECT COUNT(*) FROM applications`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count applications: %w", err)
	}
	return n, nil
}

func (s *PostgresApplicationStore) Exists(ctx context.Context, number string) (bool, error) {
	var exists bool
	err := txcontext.Executor(ctx, s.db).QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM applications WHERE number = $1)`, number).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check application number: %w", err)
	}
	return exists, nil
}

// ListByCustomer returns the customer's applications newest first, without references.
func (s *PostgresApplicationStore) ListByCustomer(ctx context.Context, customerID id.UserID) ([]*models.Application, error) {
	return s.list(ctx, applicationSelect+` WHERE a.customer_id = $1`+newestFirst, customerID.String())
}

func (s *PostgresApplicationStore) ListAll(ctx context.Context) ([]*models.Application, error) {
	return s.list(ctx, applicationSelect+newestFirst)
}

// ListByStatuses matches on normalised status, so WITH_MAKER includes legacy PENDING rows.
func (s *PostgresApplicationStore) ListByStatuses(ctx context.Context, statuses []models.Status) ([]*models.Application, error) {
	raw := make([]string, 0, len(statuses)+1)
	for _, st := range statuses {
		raw = append(raw, string(st))
		if st.Normalize() == models.StatusWithMaker {
			raw = append(raw, string(models.StatusPending))
		}
	}
	return s.list(ctx, applicationSelect+` WHERE a.status = ANY($1)`+newestFirst, pq.Array(raw))
}

func (s *PostgresApplicationStore) CountByStatus(ctx context.Context, customerID *id.UserID) (models.StatusCounts, error) {
	query := `SELECT status, COUNT(*) FROM applications`
	var args []any
	if customerID != nil {
		query += ` WHERE customer_id = $1`
		args = append(args, customerID.String())
	}
	query += ` GROUP BY status`

	rows, err := txcontext.Executor(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("count applications by status: %w", err)
	}
	defer rows.Close()

	counts := models.StatusCounts{}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		counts.Add(models.Status(status), n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate status counts: %w", err)
	}
	return counts, nil
}

func (s *PostgresApplicationStore) list(ctx context.Context, query string, args ...any) ([]*models.Application, error) {
	rows, err := txcontext.Executor(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Application, 0)
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate applications: %w", err)
	}
	return out, nil
}

func (s *PostgresApplicationStore) references(ctx context.Context, applicationID int64) ([]models.Reference, error) {
	rows, err := txcontext.Executor(ctx, s.db).QueryContext(ctx, `
		SELECT reference_number, name, relationship, contact_number, address
		FROM application_references WHERE application_id = $1 ORDER BY reference_number, id
	`, applicationID)
	if err != nil {
		return nil, fmt.Errorf("list references: %w", err)
	}
	defer rows.Close()

	refs := make([]models.Reference, 0)
	for rows.Next() {
		var r models.Reference
		if err := rows.Scan(&r.ReferenceNumber, &r.Name, &r.Relationship, &r.ContactNumber, &r.Address); err != nil {
			return nil, fmt.Errorf("scan reference: %w", err)
		}
		refs = append(refs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate references: %w", err)
	}
	return refs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanApplication(row rowScanner) (*models.Application, error) {
	var (
		app                  models.Application
		customerID, status   string
		submitted, dob       time.Time
		marital, gender      string
		occupation, loanType string
		existingType, lender sql.NullString
		outstanding, emi     decimal.NullDecimal
		tenure               sql.NullInt64
	)
	p, e, l, x := &app.Personal, &app.Employment, &app.Loan, &app.ExistingLoan
	err := row.Scan(
		&app.ID, &app.Number, &customerID, &app.CustomerName, &status, &submitted, &app.UpdatedAt,
		&p.FirstName, &p.MiddleName, &p.LastName, &p.PhoneNumber, &p.EmailAddress,
		&p.CurrentAddress, &p.PermanentAddress, &marital, &gender, &dob, &p.Age,
		&p.AadhaarNumber, &p.PANNumber, &p.PassportNumber, &p.FatherName, &p.EducationDetails,
		&occupation, &e.EmployerOrBusinessName, &e.Designation, &e.TotalWorkExperienceYears, &e.OfficeAddress,
		&loanType, &l.LoanAmount, &l.LoanDurationMonths, &l.PurposeOfLoan,
		&x.HasExistingLoans, &existingType, &lender, &outstanding, &emi, &tenure,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan application: %w", err)
	}

	parsedCustomer, err := id.ParseUserID(customerID)
	if err != nil {
		return nil, fmt.Errorf("scan customer id: %w", err)
	}
	parsedStatus, err := models.ParseStatus(status)
	if err != nil {
		return nil, fmt.Errorf("scan application status: %w", err)
	}
	app.CustomerID = parsedCustomer
	app.Status = parsedStatus
	app.SubmittedDate = models.NewDate(submitted)
	p.MaritalStatus = models.MaritalStatus(marital)
	p.Gender = models.Gender(gender)
	p.DateOfBirth = models.NewDate(dob)
	e.OccupationType = models.OccupationType(occupation)
	l.LoanType = models.LoanType(loanType)
	if existingType.Valid {
		x.ExistingLoanType = &existingType.String
	}
	if lender.Valid {
		x.LenderName = &lender.String
	}
	if outstanding.Valid {
		x.OutstandingAmount = &outstanding.Decimal
	}
	if emi.Valid {
		x.MonthlyEMI = &emi.Decimal
	}
	if tenure.Valid {
		t := int(tenure.Int64)
		x.TenureRemainingMonths = &t
	}
	return &app, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func nullInt(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}

// PostgresCommentStore persists the append-only comment trail.
type PostgresCommentStore struct {
	db *sql.DB
}

func NewPostgresComments(db *sql.DB) *PostgresCommentStore {
	return &PostgresCommentStore{db: db}
}

func (s *PostgresCommentStore) Append(ctx context.Context, c *models.Comment) error {
	_, err := txcontext.Executor(ctx, s.db).ExecContext(ctx, `
		INSERT INTO comments (id, application_id, user_id, user_name, comment_text, comment_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, c.ID.String(), c.ApplicationID, c.UserID.String(), c.UserName, c.Text, string(c.Type), c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

func (s *PostgresCommentStore) ListByApplication(ctx context.Context, applicationID int64) ([]*models.Comment, error) {
	rows, err := txcontext.Executor(ctx, s.db).QueryContext(ctx, `
		SELECT id, application_id, user_id, user_name, comment_text, comment_type, created_at
		FROM comments WHERE application_id = $1 ORDER BY created_at ASC
	`, applicationID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Comment, 0)
	for rows.Next() {
		var c models.Comment
		var commentID, userID, commentType string
		if err := rows.Scan(&commentID, &c.ApplicationID, &userID, &c.UserName, &c.Text, &commentType, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		if c.ID, err = id.ParseCommentID(commentID); err != nil {
			return nil, fmt.Errorf("scan comment id: %w", err)
		}
		if c.UserID, err = id.ParseUserID(userID); err != nil {
			return nil, fmt.Errorf("scan comment user id: %w", err)
		}
		c.Type = models.CommentType(commentType)
		out = append(out, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comments: %w", err)
	}
	return out, nil
}
