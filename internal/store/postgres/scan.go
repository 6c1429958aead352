package postgres

import (
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	"github.com/groblegark/confstore/internal/model"
)

// scannable is satisfied by both *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

func scanConfiguration(s scannable) (*model.Configuration, error) {
	c := &model.Configuration{}
	var data []byte
	if err := s.Scan(&c.ID, &c.UserID, &c.Name, &data, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.Data = json.RawMessage(data)
	return c, nil
}

func scanVersion(s scannable) (*model.ConfigurationVersion, error) {
	v := &model.ConfigurationVersion{}
	var data []byte
	if err := s.Scan(&v.ID, &v.ConfigurationID, &v.VersionNumber, &v.Name, &data, &v.CreatedAt); err != nil {
		return nil, err
	}
	v.Data = json.RawMessage(data)
	return v, nil
}

func scanSubscription(s scannable) (*model.Subscription, error) {
	sub := &model.Subscription{}
	var types pq.StringArray
	if err := s.Scan(&sub.ID, &sub.UserID, &types, &sub.CreatedAt, &sub.UpdatedAt); err != nil {
		return nil, err
	}
	sub.EventTypes = make([]model.EventType, 0, len(types))
	for _, t := range types {
		et := model.EventType(t)
		if !et.IsValid() {
			return nil, fmt.Errorf("subscription %s: unknown event type %q", sub.ID, t)
		}
		sub.EventTypes = append(sub.EventTypes, et)
	}
	return sub, nil
}
