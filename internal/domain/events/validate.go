package events

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"
)

// ValidationErrors maps a field path to a human-readable message.
// Paths follow the grammar clients render against, e.g.
// basicDetails.title, schedule.locations[0].venues[1].name,
// tickets.venue[v1].ticketTypes[0].price. An empty map means valid.
type ValidationErrors map[string]string

const maxTitleLength = 50

// Validate performs the full publish-time validation of an event document.
// It accumulates every applicable error at each level rather than stopping
// at the first, and only skips children that are structurally unreachable
// (an empty schedule, a venue without dates, and so on).
func Validate(doc EventDocument) ValidationErrors {
	errs := ValidationErrors{}

	validateBasicDetails(doc.BasicDetails, errs)

	if len(doc.Schedule.Locations) == 0 {
		errs["schedule.locations"] = "At least one location is required."
		return errs
	}
	validateSchedule(doc.Schedule, errs)
	validateTickets(doc.Schedule, doc.Tickets, errs)

	return errs
}

func validateBasicDetails(bd BasicDetails, errs ValidationErrors) {
	title := strings.TrimSpace(bd.Title)
	switch {
	case title == "":
		errs["basicDetails.title"] = "Title is required."
	case utf8.RuneCountInString(title) > maxTitleLength:
		errs["basicDetails.title"] = fmt.Sprintf("Title cannot exceed %d characters.", maxTitleLength)
	}

	if strings.TrimSpace(bd.Description) == "" {
		errs["basicDetails.description"] = "Description is required."
	}
	if len(bd.Genres) == 0 {
		errs["basicDetails.genres"] = "Select at least one genre."
	}
	if len(bd.Languages) == 0 {
		errs["basicDetails.languages"] = "Select at least one language."
	}
	if strings.TrimSpace(bd.AgeLimit) == "" {
		errs["basicDetails.ageLimit"] = "Age limit is required."
	}
	if bd.DurationMinutes <= 0 {
		errs["basicDetails.durationMinutes"] = "Duration must be greater than 0."
	}
	if !bd.TermsAccepted {
		errs["basicDetails.termsAccepted"] = "You must accept the terms and conditions."
	}
	if strings.TrimSpace(bd.CoverWideURL) == "" {
		errs["basicDetails.coverWideUrl"] = "Wide cover photo is required."
	}
	if strings.TrimSpace(bd.CoverPortraitURL) == "" {
		errs["basicDetails.coverPortraitUrl"] = "Portrait cover photo is required."
	}
}

func validateSchedule(schedule Schedule, errs ValidationErrors) {
	for locIdx, location := range schedule.Locations {
		locPath := fmt.Sprintf("schedule.locations[%d]", locIdx)

		if strings.TrimSpace(location.Name) == "" {
			errs[locPath+".name"] = "Location name is required."
		}
		if len(location.Venues) == 0 {
			errs[locPath+".venues"] = "At least one venue is required."
			continue
		}

		for venueIdx, venue := range location.Venues {
			venuePath := fmt.Sprintf("%s.venues[%d]", locPath, venueIdx)

			if strings.TrimSpace(venue.Name) == "" {
				errs[venuePath+".name"] = "Venue name is required."
			}
			if strings.TrimSpace(venue.Address) == "" {
				errs[venuePath+".address"] = "Venue address is required."
			}
			if len(venue.Dates) == 0 {
				errs[venuePath+".dates"] = "At least one date is required."
				continue
			}

			for dateIdx, date := range venue.Dates {
				datePath := fmt.Sprintf("%s.dates[%d]", venuePath, dateIdx)

				if strings.TrimSpace(date.Date) == "" {
					errs[datePath+".date"] = "Date is required."
				}
				if len(date.Shows) == 0 {
					errs[datePath+".shows"] = "At least one show is required."
					continue
				}

				for showIdx, show := range date.Shows {
					showPath := fmt.Sprintf("%s.shows[%d]", datePath, showIdx)

					if strings.TrimSpace(show.StartTime) == "" {
						errs[showPath+".startTime"] = "Start time is required."
					}
					if strings.TrimSpace(show.EndTime) == "" {
						errs[showPath+".endTime"] = "End time is required."
					}
					// Times are HH:MM strings, so lexicographic order is
					// temporal order. The violation is keyed on endTime.
					if show.StartTime != "" && show.EndTime != "" && show.StartTime >= show.EndTime {
						errs[showPath+".endTime"] = "End time must be after start time."
					}
				}
			}
		}
	}
}

func validateTickets(schedule Schedule, tickets TicketConfig, errs ValidationErrors) {
	for _, venueID := range schedule.VenuesWithShows() {
		config := tickets.ConfigFor(venueID)
		if config == nil || len(config.TicketTypes) == 0 {
			errs[fmt.Sprintf("tickets.venue[%s]", venueID)] = "At least one ticket type is required for this venue."
			continue
		}

		for idx, ticket := range config.TicketTypes {
			path := fmt.Sprintf("tickets.venue[%s].ticketTypes[%d]", venueID, idx)

			if strings.TrimSpace(ticket.TypeName) == "" {
				errs[path+".typeName"] = "Ticket type name is required."
			}
			if ticket.Price <= 0 {
				errs[path+".price"] = "Price must be greater than 0."
			}
			if ticket.TotalQuantity <= 0 || ticket.TotalQuantity != math.Trunc(ticket.TotalQuantity) {
				errs[path+".totalQuantity"] = "Total quantity must be a positive integer."
			}
		}
	}
}
