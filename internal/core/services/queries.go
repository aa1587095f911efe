// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package services

// BigQuery statements over the production table. The table name is injected
// with fmt.Sprintf; values are bound as named query parameters.
const (
	// QryFindProductionById returns the newest row written for one production.
	QryFindProductionById = "SELECT * FROM `%s` WHERE id = @id ORDER BY create_date DESC LIMIT 1"

	// QryListProductions returns the newest row of every production, newest
	// first.
	QryListProductions = "SELECT * EXCEPT(rn) FROM (SELECT *, ROW_NUMBER() OVER (PARTITION BY id ORDER BY create_date DESC) AS rn FROM `%s`) WHERE rn = 1 ORDER BY create_date DESC LIMIT @limit"
)
