package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	dErrors "github.com/rakesh-tirumalaparapu/zipp/pkg/domain-errors"
)

// ApplicationPayload is the submit/resubmit request body. Fields stay raw so
// validation runs in the workflow's guard order rather than at decode time.
type ApplicationPayload struct {
	PersonalDetails     *PersonalDetailsInput     `json:"personalDetails"`
	EmploymentDetails   *EmploymentDetailsInput   `json:"employmentDetails"`
	LoanDetails         *LoanDetailsInput         `json:"loanDetails"`
	ExistingLoanDetails *ExistingLoanDetailsInput `json:"existingLoanDetails"`
	References          []ReferenceInput          `json:"references"`
}

type PersonalDetailsInput struct {
	FirstName        string `json:"firstName"`
	MiddleName       string `json:"middleName"`
	LastName         string `json:"lastName"`
	PhoneNumber      string `json:"phoneNumber"`
	EmailAddress     string `json:"emailAddress"`
	CurrentAddress   string `json:"currentAddress"`
	PermanentAddress string `json:"permanentAddress"`
	MaritalStatus    string `json:"maritalStatus"`
	Gender           string `json:"gender"`
	DateOfBirth      string `json:"dateOfBirth"`
	AadhaarNumber    string `json:"aadhaarNumber"`
	PANNumber        string `json:"panNumber"`
	PassportNumber   string `json:"passportNumber"`
	FatherName       string `json:"fatherName"`
	EducationDetails string `json:"educationDetails"`
}

type EmploymentDetailsInput struct {
	OccupationType           string `json:"occupationType"`
	EmployerOrBusinessName   string `json:"employerOrBusinessName"`
	Designation              string `json:"designation"`
	TotalWorkExperienceYears int    `json:"totalWorkExperienceYears"`
	OfficeAddress            string `json:"officeAddress"`
}

type LoanDetailsInput struct {
	LoanType           string          `json:"loanType"`
	LoanAmount         decimal.Decimal `json:"loanAmount"`
	LoanDurationMonths int             `json:"loanDurationMonths"`
	PurposeOfLoan      string          `json:"purposeOfLoan"`
}

type ExistingLoanDetailsInput struct {
	HasExistingLoans      bool             `json:"hasExistingLoans"`
	ExistingLoanType      string           `json:"existingLoanType"`
	LenderName            string           `json:"lenderName"`
	OutstandingAmount     *decimal.Decimal `json:"outstandingAmount"`
	MonthlyEMI            *decimal.Decimal `json:"monthlyEmi"`
	TenureRemainingMonths *int             `json:"tenureRemainingMonths"`
}

type ReferenceInput struct {
	ReferenceNumber int    `json:"referenceNumber"`
	Name            string `json:"name"`
	Relationship    string `json:"relationship"`
	ContactNumber   string `json:"contactNumber"`
	Address         string `json:"address"`
}

func badRequest(msg string) error {
	return dErrors.New(dErrors.CodeBadRequest, msg)
}

func required(value, msg string) error {
	if strings.TrimSpace(value) == "" {
		return badRequest(msg)
	}
	return nil
}

// ToDetails validates the payload and converts it into application details.
// now is the request clock, used for the age and date-of-birth checks.
func (p *ApplicationPayload) ToDetails(now time.Time) (Details, error) {
	if p == nil {
		return Details{}, badRequest("Application details are required")
	}
	personal, err := p.personal(now)
	if err != nil {
		return Details{}, err
	}
	employment, err := p.employment()
	if err != nil {
		return Details{}, err
	}
	loan, err := p.loan()
	if err != nil {
		return Details{}, err
	}
	existing, err := p.existingLoan()
	if err != nil {
		return Details{}, err
	}
	refs, err := p.references()
	if err != nil {
		return Details{}, err
	}
	return Details{
		Personal:     personal,
		Employment:   employment,
		Loan:         loan,
		ExistingLoan: existing,
		References:   refs,
	}, nil
}

func (p *ApplicationPayload) personal(now time.Time) (PersonalDetails, error) {
	in := p.PersonalDetails
	if in == nil {
		return PersonalDetails{}, badRequest("Personal details are required")
	}
	for _, check := range []error{
		required(in.FirstName, "First name is required"),
		required(in.LastName, "Last name is required"),
		required(in.PhoneNumber, "Phone number is required"),
		required(in.EmailAddress, "Email address is required"),
		required(in.CurrentAddress, "Current address is required"),
		required(in.DateOfBirth, "Date of birth is required"),
	} {
		if check != nil {
			return PersonalDetails{}, check
		}
	}
	marital, err := ParseMaritalStatus(in.MaritalStatus)
	if err != nil {
		return PersonalDetails{}, err
	}
	gender, err := ParseGender(in.Gender)
	if err != nil {
		return PersonalDetails{}, err
	}
	dob, err := ParseDate(in.DateOfBirth)
	if err != nil {
		return PersonalDetails{}, badRequest("Date of birth must be YYYY-MM-DD")
	}
	if dob.After(now) {
		return PersonalDetails{}, badRequest("Date of birth cannot be in the future")
	}
	return PersonalDetails{
		FirstName:        strings.TrimSpace(in.FirstName),
		MiddleName:       strings.TrimSpace(in.MiddleName),
		LastName:         strings.TrimSpace(in.LastName),
		PhoneNumber:      strings.TrimSpace(in.PhoneNumber),
		EmailAddress:     strings.TrimSpace(in.EmailAddress),
		CurrentAddress:   strings.TrimSpace(in.CurrentAddress),
		PermanentAddress: strings.TrimSpace(in.PermanentAddress),
		MaritalStatus:    marital,
		Gender:           gender,
		DateOfBirth:      dob,
		Age:              Age(dob.Time, now),
		AadhaarNumber:    strings.TrimSpace(in.AadhaarNumber),
		PANNumber:        strings.ToUpper(strings.TrimSpace(in.PANNumber)),
		PassportNumber:   strings.TrimSpace(in.PassportNumber),
		FatherName:       strings.TrimSpace(in.FatherName),
		EducationDetails: strings.TrimSpace(in.EducationDetails),
	}, nil
}

func (p *ApplicationPayload) employment() (EmploymentDetails, error) {
	in := p.EmploymentDetails
	if in == nil {
		return EmploymentDetails{}, badRequest("Employment details are required")
	}
	occupation, err := ParseOccupationType(in.OccupationType)
	if err != nil {
		return EmploymentDetails{}, err
	}
	if err := required(in.EmployerOrBusinessName, "Employer or business name is required"); err != nil {
		return EmploymentDetails{}, err
	}
	if in.TotalWorkExperienceYears < 0 {
		return EmploymentDetails{}, badRequest("Work experience cannot be negative")
	}
	return EmploymentDetails{
		OccupationType:           occupation,
		EmployerOrBusinessName:   strings.TrimSpace(in.EmployerOrBusinessName),
		Designation:              strings.TrimSpace(in.Designation),
		TotalWorkExperienceYears: in.TotalWorkExperienceYears,
		OfficeAddress:            strings.TrimSpace(in.OfficeAddress),
	}, nil
}

func (p *ApplicationPayload) loan() (LoanDetails, error) {
	in := p.LoanDetails
	if in == nil {
		return LoanDetails{}, badRequest("Loan details are required")
	}
	loanType, err := ParseLoanType(in.LoanType)
	if err != nil {
		return LoanDetails{}, err
	}
	if !in.LoanAmount.IsPositive() {
		return LoanDetails{}, badRequest("Loan amount must be greater than zero")
	}
	if in.LoanDurationMonths <= 0 {
		return LoanDetails{}, badRequest("Loan duration must be greater than zero")
	}
	return LoanDetails{
		LoanType:           loanType,
		LoanAmount:         in.LoanAmount.Round(2),
		LoanDurationMonths: in.LoanDurationMonths,
		PurposeOfLoan:      strings.TrimSpace(in.PurposeOfLoan),
	}, nil
}

func (p *ApplicationPayload) existingLoan() (ExistingLoanDetails, error) {
	in := p.ExistingLoanDetails
	if in == nil || !in.HasExistingLoans {
		return ExistingLoanDetails{HasExistingLoans: false}, nil
	}
	if err := required(in.ExistingLoanType, "Existing loan type is required"); err != nil {
		return ExistingLoanDetails{}, err
	}
	if err := required(in.LenderName, "Lender name is required"); err != nil {
		return ExistingLoanDetails{}, err
	}
	if in.OutstandingAmount == nil || in.OutstandingAmount.IsNegative() {
		return ExistingLoanDetails{}, badRequest("Outstanding amount is required")
	}
	if in.MonthlyEMI == nil || in.MonthlyEMI.IsNegative() {
		return ExistingLoanDetails{}, badRequest("Monthly EMI is required")
	}
	if in.TenureRemainingMonths == nil || *in.TenureRemainingMonths < 0 {
		return ExistingLoanDetails{}, badRequest("Remaining tenure is required")
	}
	loanType := strings.TrimSpace(in.ExistingLoanType)
	lender := strings.TrimSpace(in.LenderName)
	outstanding := in.OutstandingAmount.Round(2)
	emi := in.MonthlyEMI.Round(2)
	tenure := *in.TenureRemainingMonths
	return ExistingLoanDetails{
		HasExistingLoans:      true,
		ExistingLoanType:      &loanType,
		LenderName:            &lender,
		OutstandingAmount:     &outstanding,
		MonthlyEMI:            &emi,
		TenureRemainingMonths: &tenure,
	}, nil
}

func (p *ApplicationPayload) references() ([]Reference, error) {
	if len(p.References) == 0 {
		return nil, badRequest("At least one reference is required")
	}
	refs := make([]Reference, 0, len(p.References))
	for i, in := range p.References {
		if err := required(in.Name, "Reference name is required"); err != nil {
			return nil, err
		}
		if err := required(in.ContactNumber, "Reference contact number is required"); err != nil {
			return nil, err
		}
		number := in.ReferenceNumber
		if number <= 0 {
			number = i + 1
		}
		refs = append(refs, Reference{
			ReferenceNumber: number,
			Name:            strings.TrimSpace(in.Name),
			Relationship:    strings.TrimSpace(in.Relationship),
			ContactNumber:   strings.TrimSpace(in.ContactNumber),
			Address:         strings.TrimSpace(in.Address),
		})
	}
	return refs, nil
}
