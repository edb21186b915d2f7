package command

import (
	"gsm-relay-remote/internal/domain/model"
	"gsm-relay-remote/internal/domain/validator"
)

var statusSuffixes = map[model.StatusQuery]string{
	model.StatusRelay:         "T#",
	model.StatusSignalLevel:   "CSQ#",
	model.StatusStoredNumbers: "A?#",
	model.StatusEventLog:      "LOG#",
}

// StatusQueries lists the supported queries in menu order.
func StatusQueries() []model.StatusQuery {
	return []model.StatusQuery{
		model.StatusRelay,
		model.StatusSignalLevel,
		model.StatusStoredNumbers,
		model.StatusEventLog,
	}
}

// StatusQuery renders one of the fixed query bodies. Which password the
// caller passes in is a policy decision made by the service layer.
func StatusQuery(password string, query model.StatusQuery) (string, error) {
	if err := validator.CheckPassword("password", password); err != nil {
		return "", err
	}
	suffix, ok := statusSuffixes[query]
	if !ok {
		return "", &model.InvalidInputError{Field: "status query", Value: string(query), Reason: "unknown query"}
	}
	return password + suffix, nil
}

// ParseStatusQuery maps user text onto a known query.
func ParseStatusQuery(s string) (model.StatusQuery, error) {
	q := model.StatusQuery(s)
	if _, ok := statusSuffixes[q]; !ok {
		return "", &model.InvalidInputError{Field: "status query", Value: s, Reason: "expected one of relay, signal, numbers, log"}
	}
	return q, nil
}
