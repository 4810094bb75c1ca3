package weedcoco

// ReferenceReport lists identifier collisions and unresolved references in a document.
type ReferenceReport struct {
	DuplicateImageIDs      []int
	DuplicateAnnotationIDs []int
	DuplicateCategoryIDs   []int

	// Annotation ids whose image_id or category_id has no matching entity.
	UnresolvedImageRefs    []int
	UnresolvedCategoryRefs []int

	// Image ids whose agcontext_id or license has no matching entity.
	UnresolvedAgContextRefs []int
	UnresolvedLicenseRefs   []int
}

// OK reports whether the document has no identifier problems.
func (r ReferenceReport) OK() bool {
	return len(r.DuplicateImageIDs) == 0 &&
		len(r.DuplicateAnnotationIDs) == 0 &&
		len(r.DuplicateCategoryIDs) == 0 &&
		len(r.UnresolvedImageRefs) == 0 &&
		len(r.UnresolvedCategoryRefs) == 0 &&
		len(r.UnresolvedAgContextRefs) == 0 &&
		len(r.UnresolvedLicenseRefs) == 0
}

// References checks identifier uniqueness and referential integrity of doc.
func References(doc *Document) ReferenceReport {
	var r ReferenceReport

	imageIDs := make(map[int]struct{}, len(doc.Images))
	for i := range doc.Images {
		if !addID(imageIDs, doc.Images[i].ID) {
			r.DuplicateImageIDs = append(r.DuplicateImageIDs, doc.Images[i].ID)
		}
	}

	categoryIDs := make(map[int]struct{}, len(doc.Categories))
	for i := range doc.Categories {
		if !addID(categoryIDs, doc.Categories[i].ID) {
			r.DuplicateCategoryIDs = append(r.DuplicateCategoryIDs, doc.Categories[i].ID)
		}
	}

	annotationIDs := make(map[int]struct{}, len(doc.Annotations))
	for i := range doc.Annotations {
		ann := &doc.Annotations[i]
		if !addID(annotationIDs, ann.ID) {
			r.DuplicateAnnotationIDs = append(r.DuplicateAnnotationIDs, ann.ID)
		}
		if _, ok := imageIDs[ann.ImageID]; !ok {
			r.UnresolvedImageRefs = append(r.UnresolvedImageRefs, ann.ID)
		}
		if _, ok := categoryIDs[ann.CategoryID]; !ok {
			r.UnresolvedCategoryRefs = append(r.UnresolvedCategoryRefs, ann.ID)
		}
	}

	agcontextIDs := make(map[int]struct{}, len(doc.AgContexts))
	for i := range doc.AgContexts {
		agcontextIDs[doc.AgContexts[i].ID] = struct{}{}
	}
	licenseIDs := make(map[int]struct{}, len(doc.License))
	for i := range doc.License {
		licenseIDs[doc.License[i].ID] = struct{}{}
	}

	for i := range doc.Images {
		img := &doc.Images[i]
		if img.AgContextID != nil {
			if _, ok := agcontextIDs[*img.AgContextID]; !ok {
				r.UnresolvedAgContextRefs = append(r.UnresolvedAgContextRefs, img.ID)
			}
		}
		if img.License != nil {
			if _, ok := licenseIDs[*img.License]; !ok {
				r.UnresolvedLicenseRefs = append(r.UnresolvedLicenseRefs, img.ID)
			}
		}
	}

	return r
}

// addID inserts id into set and reports whether it was new.
func addID(set map[int]struct{}, id int) bool {
	if _, dup := set[id]; dup {
		return false
	}
	set[id] = struct{}{}
	return true
}
