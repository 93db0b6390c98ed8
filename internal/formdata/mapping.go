package formdata

import (
	"strings"

	"forumregistrations/internal/domain"
)

// Submission field names read by the mappers.
const (
	fieldAvailability     = "please_provide_3_or_4_dates_and_time_slots_that_you_are_available_during_the_next_one_to_two_weeks"
	fieldExecIndustry     = "industry___exec_profile"
	fieldExecAirport      = "departing_airport_preference__code___if_you_are_requesting_a_flight_"
	fieldExecGender       = "for_travelling_accommodations__choose_gender_as_listed_in_government_issued_id"
	fieldExecHotel        = "hotel_accommodation_required_"
	fieldExecSpeakerTopic = "if_you_have_another_topic_in_mind__please_share_below"
	fieldExecOtherNotes   = "please_specify"
)

// Record is a normalized submission ready for merging.
type Record struct {
	Profile domain.AttendeeProfile
	// ExecutiveProfile is set only for executive profile imports.
	ExecutiveProfile []domain.ProfileAnswer
}

// Name returns "first last", falling back to the email address.
func (r Record) Name() string {
	name := strings.TrimSpace(r.Profile.FirstName + " " + r.Profile.LastName)
	if name == "" {
		return r.Profile.Email
	}
	return name
}

// Normalize maps a raw submission to a Record for the given import kind.
// It returns domain.ErrMissingEmailField when no email is present.
func Normalize(kind domain.ImportKind, sub domain.RawSubmission) (Record, error) {
	f := Collapse(sub.Values)
	email, err := f.Email()
	if err != nil {
		return Record{}, err
	}
	p := domain.AttendeeProfile{
		FirstName: f.Get("firstname", "FirstName", "first_name"),
		LastName:  f.Get("lastname", "LastName", "last_name"),
		Email:     email,
	}
	if kind == domain.ImportExecutiveProfile {
		return mapExecutiveProfile(f, p), nil
	}
	return mapInitialRegistration(f, p), nil
}

func mapInitialRegistration(f Fields, p domain.AttendeeProfile) Record {
	p.Company = f.Get("company", "Company")
	p.Title = f.Get("jobtitle", "JobTitle", "job_title")
	p.Industry = f.Get("industry", "Industry")
	p.Cellphone = f.Get("phone", "Phone", "cellphone")
	if availability := f.Get(fieldAvailability); availability != "" {
		p.Notes = "Availability: " + availability
	}
	return Record{Profile: p}
}

func mapExecutiveProfile(f Fields, p domain.AttendeeProfile) Record {
	p.Company = f.Get("company")
	p.Title = f.Get("jobtitle")
	p.Industry = f.Get(fieldExecIndustry)
	p.Cellphone = f.Get("mobilephone")
	p.CompanySize = f.Get("total_company_employees")
	p.Airport = f.Get(fieldExecAirport)
	p.Gender = f.Get(fieldExecGender)
	p.DietaryNotes = f.Get("dietary_restrictions")
	p.Hotel = hotelRequirement(f.Get(fieldExecHotel))
	p.Notes = executiveNotes(f)
	return Record{Profile: p, ExecutiveProfile: f.ProfileData()}
}

func hotelRequirement(v string) string {
	switch strings.ToLower(v) {
	case "yes":
		return "Required"
	case "no":
		return "Not Required"
	}
	return v
}

func executiveNotes(f Fields) string {
	var sections []string
	if topic := StripHTML(f.Raw(", ", fieldExecSpeakerTopic)); topic != "" {
		sections = append(sections, "Additional Speaking Topic: "+topic)
	}
	if other := StripHTML(f.Raw(", ", fieldExecOtherNotes)); other != "" {
		sections = append(sections, "Additional Notes: "+other)
	}
	return strings.Join(sections, "\n\n")
}
