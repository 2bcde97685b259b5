package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	Password  string             `bson:"password" json:"-"` // hash Argon2id, jamais exposé
	Role      string             `bson:"role" json:"role"`  // user | admin
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}
