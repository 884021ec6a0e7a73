package driver

const (
	// MERGE on id so re-creation is idempotent; name uniqueness is
	// enforced by constraint.
	SaveElementQuery = `
		MERGE (e:Element {id: $id})
		SET e.name = $name,
			e.type = $type,
			e.search_query = $search_query,
			e.seed = $seed,
			e.created_at = $created_at
		RETURN e.id AS id
	`

	GetElementQuery = `
		MATCH (e:Element {id: $id})
		RETURN e.id AS id, e.name AS name, e.type AS type,
			e.search_query AS search_query, e.seed AS seed, e.created_at AS created_at
	`

	GetElementByNameQuery = `
		MATCH (e:Element {name: $name})
		RETURN e.id AS id, e.name AS name, e.type AS type,
			e.search_query AS search_query, e.seed AS seed, e.created_at AS created_at
	`

	ListElementsQuery = `
		MATCH (e:Element)
		RETURN e.id AS id, e.name AS name, e.type AS type,
			e.search_query AS search_query, e.seed AS seed, e.created_at AS created_at
		ORDER BY e.created_at
	`

	ListElementNamesQuery = `
		MATCH (e:Element {type: $type})
		RETURN e.name AS name
	`

	// MERGE on pair_key: when two requests race on the same pair, both
	// converge on one row and ON CREATE only fires for the winner. The
	// loser reads back the winner's values.
	SaveCombinationQuery = `
		MERGE (c:Combination {pair_key: $pair_key})
		ON CREATE SET c.id = $id,
			c.element_a = $element_a,
			c.element_b = $element_b,
			c.result = $result,
			c.confidence = $confidence,
			c.reasoning = $reasoning,
			c.summary = $summary,
			c.created_at = $created_at
		RETURN c.id AS id, c.element_a AS element_a, c.element_b AS element_b,
			c.result AS result, c.confidence AS confidence, c.reasoning AS reasoning,
			c.summary AS summary, c.created_at AS created_at
	`

	GetCombinationQuery = `
		MATCH (c:Combination {pair_key: $pair_key})
		RETURN c.id AS id, c.element_a AS element_a, c.element_b AS element_b,
			c.result AS result, c.confidence AS confidence, c.reasoning AS reasoning,
			c.summary AS summary, c.created_at AS created_at
	`

	LinkCombinationQuery = `
		MATCH (c:Combination {pair_key: $pair_key})
		MATCH (a:Element {id: $element_a})
		MATCH (b:Element {id: $element_b})
		MATCH (r:Element {id: $result})
		MERGE (c)-[:INPUT]->(a)
		MERGE (c)-[:INPUT]->(b)
		MERGE (c)-[:RESULT]->(r)
	`

	// key = user_id + "|" + element_id makes the collection add idempotent.
	AddToCollectionQuery = `
		MERGE (u:UserElement {key: $key})
		ON CREATE SET u.id = $id,
			u.user_id = $user_id,
			u.element_id = $element_id,
			u.discovered_at = $discovered_at
		RETURN u.id AS id
	`
)
