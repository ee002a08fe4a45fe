package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	dErrors "github.com/rakesh-tirumalaparapu/zipp/pkg/domain-errors"
)

const dateLayout = "2006-01-02"

// Date is a calendar date serialised as YYYY-MM-DD.
type Date struct {
	time.Time
}

// NewDate truncates t to its calendar day in UTC.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses YYYY-MM-DD.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return Date{t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Age returns completed years between dob and now.
func Age(dob, now time.Time) int {
	years := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}

type MaritalStatus string

const (
	MaritalSingle   MaritalStatus = "SINGLE"
	MaritalMarried  MaritalStatus = "MARRIED"
	MaritalDivorced MaritalStatus = "DIVORCED"
	MaritalWidowed  MaritalStatus = "WIDOWED"
)

func ParseMaritalStatus(s string) (MaritalStatus, error) {
	m := MaritalStatus(strings.ToUpper(strings.TrimSpace(s)))
	switch m {
	case MaritalSingle, MaritalMarried, MaritalDivorced, MaritalWidowed:
		return m, nil
	}
	return "", dErrors.New(dErrors.CodeBadRequest, "Invalid marital status: "+s)
}

type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
	GenderOther  Gender = "OTHER"
)

func ParseGender(s string) (Gender, error) {
	g := Gender(strings.ToUpper(strings.TrimSpace(s)))
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return g, nil
	}
	return "", dErrors.New(dErrors.CodeBadRequest, "Invalid gender: "+s)
}

type OccupationType string

const (
	OccupationSalaried     OccupationType = "SALARIED"
	OccupationSelfEmployed OccupationType = "SELF_EMPLOYED"
)

// ParseOccupationType accepts spellings such as "self-employed".
func ParseOccupationType(s string) (OccupationType, error) {
	o := OccupationType(strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(s)), "-", "_"))
	switch o {
	case OccupationSalaried, OccupationSelfEmployed:
		return o, nil
	}
	return "", dErrors.New(dErrors.CodeBadRequest, "Invalid occupation type: "+s)
}

type LoanType string

const (
	LoanHome     LoanType = "HOME_LOAN"
	LoanVehicle  LoanType = "VEHICLE_LOAN"
	LoanPersonal LoanType = "PERSONAL_LOAN"
)

// ParseLoanType accepts spellings such as "home loan".
func ParseLoanType(s string) (LoanType, error) {
	l := LoanType(strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(s)), " ", "_"))
	switch l {
	case LoanHome, LoanVehicle, LoanPersonal:
		return l, nil
	}
	return "", dErrors.New(dErrors.CodeBadRequest, "Invalid loan type: "+s)
}

type PersonalDetails struct {
	FirstName        string        `json:"firstName"`
	MiddleName       string        `json:"middleName"`
	LastName         string        `json:"lastName"`
	PhoneNumber      string        `json:"phoneNumber"`
	EmailAddress     string        `json:"emailAddress"`
	CurrentAddress   string        `json:"currentAddress"`
	PermanentAddress string        `json:"permanentAddress"`
	MaritalStatus    MaritalStatus `json:"maritalStatus"`
	Gender           Gender        `json:"gender"`
	DateOfBirth      Date          `json:"dateOfBirth"`
	Age              int           `json:"age"`
	AadhaarNumber    string        `json:"aadhaarNumber"`
	PANNumber        string        `json:"panNumber"`
	PassportNumber   string        `json:"passportNumber"`
	FatherName       string        `json:"fatherName"`
	EducationDetails string        `json:"educationDetails"`
}

type EmploymentDetails struct {
	OccupationType           OccupationType `json:"occupationType"`
	EmployerOrBusinessName   string         `json:"employerOrBusinessName"`
	Designation              string         `json:"designation"`
	TotalWorkExperienceYears int            `json:"totalWorkExperienceYears"`
	OfficeAddress            string         `json:"officeAddress"`
}

type LoanDetails struct {
	LoanType           LoanType        `json:"loanType"`
	LoanAmount         decimal.Decimal `json:"loanAmount"`
	LoanDurationMonths int             `json:"loanDurationMonths"`
	PurposeOfLoan      string          `json:"purposeOfLoan"`
}

// ExistingLoanDetails optional fields are nil when HasExistingLoans is false.
type ExistingLoanDetails struct {
	HasExistingLoans      bool             `json:"hasExistingLoans"`
	ExistingLoanType      *string          `json:"existingLoanType"`
	LenderName            *string          `json:"lenderName"`
	OutstandingAmount     *decimal.Decimal `json:"outstandingAmount"`
	MonthlyEMI            *decimal.Decimal `json:"monthlyEmi"`
	TenureRemainingMonths *int             `json:"tenureRemainingMonths"`
}

type Reference struct {
	ReferenceNumber int    `json:"referenceNumber"`
	Name            string `json:"name"`
	Relationship    string `json:"relationship"`
	ContactNumber   string `json:"contactNumber"`
	Address         string `json:"address"`
}

// Details is the customer-supplied content of an application.
type Details struct {
	Personal     PersonalDetails     `json:"personalDetails"`
	Employment   EmploymentDetails   `json:"employmentDetails"`
	Loan         LoanDetails         `json:"loanDetails"`
	ExistingLoan ExistingLoanDetails `json:"existingLoanDetails"`
	References   []Reference         `json:"references"`
}
