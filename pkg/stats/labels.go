package stats

// PETCTOrgans maps the label numbers of the standard PET/CT organ
// segmentation to region names, used when reporting statistics for
// whole-body segmentations.
var PETCTOrgans = LabelNames{
	1:  "adrenal-glands",
	2:  "aorta",
	3:  "bladder",
	4:  "brain",
	5:  "heart",
	6:  "kidney-left",
	7:  "kidney-right",
	8:  "liver",
	9:  "lung-left",
	10: "lung-right",
	11: "pancreas",
	12: "spleen",
	13: "thyroid",
	14: "stomach",
	15: "gallbladder",
	16: "esophagus",
	17: "prostate",
	18: "skeleton",
	19: "muscle",
	20: "fat",
}
