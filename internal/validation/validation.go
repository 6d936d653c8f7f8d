// Package validation holds the form checks shared by the HTTP layer and the
// services. Form validators return a field name to message map; an empty map
// means the form is valid.
package validation

import (
	"regexp"
	"strings"
	"unicode"

	"swachh_netra/internal/models"
)

const PasswordSymbols = "@$!%*?&#^()-_=+"

var (
	emailRe        = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRe        = regexp.MustCompile(`^\+?[1-9]\d{0,14}$`)
	mobileRe       = regexp.MustCompile(`^\d{10}$`)
	aadhaarRe      = regexp.MustCompile(`^\d{12}$`)
	wardRe         = regexp.MustCompile(`^\d{1,4}$`)
	vehicleNoRe    = regexp.MustCompile(`^[A-Z]{2}\s?\d{1,2}\s?[A-Z]{0,3}\s?\d{1,4}$`)
	phoneSeparator = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")
)

type Errors map[string]string

func ValidateEmail(email string) bool {
	return emailRe.MatchString(strings.TrimSpace(email))
}

// ValidatePhone accepts an optional leading + followed by up to 15 digits, the
// first of which is non-zero. Spaces, dashes and parentheses are ignored.
func ValidatePhone(phone string) bool {
	return phoneRe.MatchString(phoneSeparator.Replace(strings.TrimSpace(phone)))
}

// ValidateMobileNumber requires exactly ten digits.
func ValidateMobileNumber(mobile string) bool {
	return mobileRe.MatchString(strings.TrimSpace(mobile))
}

// ValidatePassword requires at least eight characters with an upper case
// letter, a lower case letter, a digit and one of PasswordSymbols.
func ValidatePassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	var upper, lower, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(PasswordSymbols, r):
			symbol = true
		}
	}
	return upper && lower && digit && symbol
}

type WorkerForm struct {
	Name        string `json:"name"`
	EmployeeID  string `json:"employeeId"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	Designation string `json:"designation"`
	Department  string `json:"department"`
}

func ValidateWorkerForm(f WorkerForm) Errors {
	errs := Errors{}
	switch name := strings.TrimSpace(f.Name); {
	case name == "":
		errs["name"] = "Name is required"
	case len(name) < 2:
		errs["name"] = "Name must be at least 2 characters"
	}
	if id := strings.TrimSpace(f.EmployeeID); id != "" && len(id) < 3 {
		errs["employeeId"] = "Employee ID must be at least 3 characters"
	}
	switch phone := strings.TrimSpace(f.Phone); {
	case phone == "":
		errs["phone"] = "Phone number is required"
	case !ValidatePhone(phone) || len(phoneSeparator.Replace(phone)) < 10:
		errs["phone"] = "Please enter a valid phone number"
	}
	if strings.TrimSpace(f.Address) == "" {
		errs["address"] = "Address is required"
	}
	if strings.TrimSpace(f.Designation) == "" {
		errs["designation"] = "Designation is required"
	}
	if strings.TrimSpace(f.Department) == "" {
		errs["department"] = "Department is required"
	}
	return errs
}

// ValidateWorkerData checks the HR worker form. Only name, phone and address
// are mandatory; the remaining fields are checked when present.
func ValidateWorkerData(d models.WorkerData) Errors {
	errs := Errors{}
	if strings.TrimSpace(d.Name) == "" {
		errs["name"] = "Full name is required"
	}
	if !ValidateMobileNumber(d.Phone) {
		errs["phone"] = "Phone number must be exactly 10 digits"
	}
	if strings.TrimSpace(d.Address) == "" {
		errs["address"] = "Address is required"
	}
	if d.AadhaarNumber != "" && !aadhaarRe.MatchString(d.AadhaarNumber) {
		errs["aadhaarNumber"] = "Aadhaar number must be exactly 12 digits"
	}
	if id := strings.TrimSpace(d.EmployeeID); id != "" && len(id) < 3 {
		errs["employeeId"] = "Employee ID must be at least 3 characters"
	}
	return errs
}

type SignupForm struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	RequestedRole   string `json:"requestedRole"`
	Organization    string `json:"organization"`
	Department      string `json:"department"`
	Reason          string `json:"reason"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

func ValidateSignupForm(f SignupForm) Errors {
	errs := Errors{}
	if len(strings.TrimSpace(f.Name)) < 2 {
		errs["name"] = "Name must be at least 2 characters"
	}
	switch {
	case strings.TrimSpace(f.Email) == "":
		errs["email"] = "Email is required"
	case !ValidateEmail(f.Email):
		errs["email"] = "Please enter a valid email address"
	}
	switch {
	case strings.TrimSpace(f.Phone) == "":
		errs["phone"] = "Phone number is required"
	case !ValidatePhone(f.Phone):
		errs["phone"] = "Please enter a valid phone number"
	}
	if _, ok := models.ParseRole(f.RequestedRole); !ok {
		errs["requestedRole"] = "Please select a valid role"
	}
	if strings.TrimSpace(f.Reason) == "" {
		errs["reason"] = "Please tell us why you need access"
	}
	switch {
	case f.Password == "":
		errs["password"] = "Password is required"
	case !ValidatePassword(f.Password):
		errs["password"] = "Password must be at least 8 characters with upper case, lower case, number and special character"
	}
	if f.ConfirmPassword != f.Password {
		errs["confirmPassword"] = "Passwords do not match"
	}
	return errs
}

func ValidateFeederPoint(fp models.FeederPoint) Errors {
	errs := Errors{}
	if strings.TrimSpace(fp.AreaName) == "" {
		errs["areaName"] = "Area name is required"
	}
	switch {
	case strings.TrimSpace(fp.WardNumber) == "":
		errs["wardNumber"] = "Ward number is required"
	case !wardRe.MatchString(strings.TrimSpace(fp.WardNumber)):
		errs["wardNumber"] = "Ward number must be numeric"
	}
	if strings.TrimSpace(fp.KothiName) == "" {
		errs["kothiName"] = "Kothi name is required"
	}
	if strings.TrimSpace(fp.FeederPointName) == "" {
		errs["feederPointName"] = "Feeder point name is required"
	}
	if fp.ApproximateHouseholds < 0 {
		errs["approximateHouseholds"] = "Households cannot be negative"
	}
	if len(fp.VehicleTypes) == 0 {
		errs["vehicleTypes"] = "Select at least one vehicle type"
	}
	c := fp.Coordinates
	if c.Lat < -90 || c.Lat > 90 || c.Lng < -180 || c.Lng > 180 || (c.Lat == 0 && c.Lng == 0) {
		errs["coordinates"] = "Please capture a valid location"
	}
	return errs
}

func ValidateVehicle(v models.Vehicle) Errors {
	errs := Errors{}
	switch number := strings.ToUpper(strings.TrimSpace(v.VehicleNumber)); {
	case number == "":
		errs["vehicleNumber"] = "Vehicle number is required"
	case !vehicleNoRe.MatchString(number):
		errs["vehicleNumber"] = "Please enter a valid vehicle number"
	}
	if strings.TrimSpace(v.Type) == "" {
		errs["type"] = "Vehicle type is required"
	}
	if v.Capacity <= 0 {
		errs["capacity"] = "Capacity must be greater than zero"
	}
	if v.Status != "" && !v.Status.Valid() {
		errs["status"] = "Unknown vehicle status"
	}
	return errs
}
