package validators

import "go.mongodb.org/mongo-driver/bson"

var AircraftValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"tail_number",
			"make_model",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"tail_number": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 10,
			},

			"make_model": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"type": bson.M{
				"bsonType":  "string",
				"maxLength": 50,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
