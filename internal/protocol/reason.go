package protocol

import (
	"errors"
	"strings"
)

// Fixed report reason tags.
const (
	ReasonFakeProfile = "Fake profile"
	ReasonSpam        = "Spam"
	ReasonHarassment  = "Harassment"
	ReasonNudity      = "Nudity/Adult"
	ReasonOther       = "Other"
)

// Like purposes.
const (
	PurposeFriendship   = "Friendship"
	PurposeRelationship = "Relationship"
	PurposeOther        = "Other"
)

const maxReasonText = 400

var (
	ErrInvalidReason  = errors.New("invalid report reason")
	ErrInvalidPurpose = errors.New("invalid like purpose")
)

// ReportReasons lists the tags a reporter can pick from.
func ReportReasons() []string {
	return []string{ReasonFakeProfile, ReasonSpam, ReasonHarassment, ReasonNudity, ReasonOther}
}

// Purposes lists the purposes a like can carry.
func Purposes() []string {
	return []string{PurposeFriendship, PurposeRelationship, PurposeOther}
}

// FormatReason builds the stored reason. Free text is only allowed with the
// Other tag and is appended as "Other: <text>".
func FormatReason(tag, text string) (string, error) {
	text = strings.TrimSpace(text)
	switch tag {
	case ReasonFakeProfile, ReasonSpam, ReasonHarassment, ReasonNudity:
		if text != "" {
			return "", ErrInvalidReason
		}
		return tag, nil
	case ReasonOther:
		if text == "" {
			return ReasonOther, nil
		}
		if r := []rune(text); len(r) > maxReasonText {
			text = string(r[:maxReasonText])
		}
		return ReasonOther + ": " + text, nil
	}
	return "", ErrInvalidReason
}

func validPurpose(p string) bool {
	switch p {
	case PurposeFriendship, PurposeRelationship, PurposeOther:
		return true
	}
	return false
}
