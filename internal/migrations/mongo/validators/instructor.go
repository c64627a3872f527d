package validators

import "go.mongodb.org/mongo-driver/bson"

var InstructorValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"name",
			"email",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"email": bson.M{
				"bsonType":  "string",
				"pattern":   "^[^@\\s]+@[^@\\s]+\\.[^@\\s]+$",
				"maxLength": 254,
			},

			"phone": bson.M{
				"bsonType":  "string",
				"pattern":   "^\\+[1-9][0-9]{7,14}$",
				"maxLength": 16,
			},

			"ratings": bson.M{
				"bsonType": "array",
				"items": bson.M{
					"bsonType":  "string",
					"minLength": 2,
					"maxLength": 20,
				},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
