// internal/domain/models/region.go
package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Region is an administrative region offered in the registration forms.
type Region struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name   string             `bson:"name" json:"name"`
	NameCI string             `bson:"name_ci" json:"name_ci"`
}
