package directory

// MergeContact applies a patch onto a base contact field-by-field. Zero
// patch fields leave the base value alone; slice fields replace wholesale
// when non-nil. The search string stays the base's: it was computed at
// ingestion and the next authoritative push delivers a re-ingested record.
func MergeContact(base, patch Contact) Contact {
	if patch.Name != "" {
		base.Name = patch.Name
	}
	if patch.Title != "" {
		base.Title = patch.Title
	}
	if patch.Phone != "" {
		base.Phone = patch.Phone
	}
	if patch.BusinessArea != "" {
		base.BusinessArea = patch.BusinessArea
	}
	if patch.Groups != nil {
		base.Groups = patch.Groups
	}
	if patch.Notes != nil {
		base.Notes = patch.Notes
	}
	return base
}

// MergeServer applies a patch onto a base server, same rules as contacts.
func MergeServer(base, patch Server) Server {
	if patch.Owner != "" {
		base.Owner = patch.Owner
	}
	if patch.BusinessArea != "" {
		base.BusinessArea = patch.BusinessArea
	}
	if patch.Environment != "" {
		base.Environment = patch.Environment
	}
	if patch.Description != "" {
		base.Description = patch.Description
	}
	if patch.Notes != nil {
		base.Notes = patch.Notes
	}
	return base
}

// MergeGroup applies a patch onto a base group, same rules as contacts.
func MergeGroup(base, patch Group) Group {
	if patch.Name != "" {
		base.Name = patch.Name
	}
	if patch.Description != "" {
		base.Description = patch.Description
	}
	if patch.Members != nil {
		base.Members = patch.Members
	}
	return base
}
