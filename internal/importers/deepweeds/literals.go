package deepweeds

import (
	"time"

	"github.com/weedai/weedcoco-go/internal/weedcoco"
)

// AgContextName tags every DeepWeeds annotation and names its agcontext.
const AgContextName = "deepweeds"

// uploadTimeLayout formats the agcontext upload time, e.g. 2021-03-04 09:15:00.
const uploadTimeLayout = "2006-01-02 15:04:05"

func datasetInfo() weedcoco.Info {
	return weedcoco.Info{
		Year:                 2019,
		Version:              1,
		Description:          "CSV annotations and JPEG images converted into WeedCOCO",
		SecondaryContributor: "Converted to WeedCOCO by Henry Lydecker",
		Contributor:          "Alex Olsen",
		ID:                   weedcoco.IntPtr(0),
	}
}

func datasetLicense() weedcoco.License {
	return weedcoco.License{
		ID:              0,
		LicenseName:     "CC BY 4.0",
		LicenseFullname: "Creative Commons Attribution 4.0",
		LicenseVersion:  "4.0",
		URL:             "https://creativecommons.org/licenses/by/4.0/",
	}
}

func datasetCollection() weedcoco.Collection {
	return weedcoco.Collection{
		Author:        "Olsen, Alex",
		Title:         "DeepWeeds: A Multiclass Weed Species Image Dataset for Deep Learning",
		Year:          2019,
		Identifier:    "doi:10.1038/s41598-018-38343-3",
		Rights:        "Apache License 2.0",
		AccrualPolicy: "closed",
		ID:            0,
	}
}

func datasetAgContext(uploaded time.Time) weedcoco.AgContext {
	return weedcoco.AgContext{
		ID:                     0,
		AgContextName:          AgContextName,
		CropType:               "weed_only",
		BBCHDescriptiveText:    "na",
		BBCHCode:               "na",
		GrainsDescriptiveText:  "na",
		SoilColour:             "variable",
		SurfaceCover:           "none",
		SurfaceCoverage:        "na",
		WeatherDescription:     "variable",
		LocationLat:            -26,
		LocationLong:           150,
		LocationDatum:          4326,
		UploadTime:             uploaded.Format(uploadTimeLayout),
		CameraMake:             "FLIR Blackfly 23S6C",
		CameraLens:             "Fujinon CF25HA-1",
		CameraLensFocalLength:  25,
		CameraHeight:           1000,
		CameraAngle:            90,
		CameraFOV:              28,
		PhotographyDescription: "Mounted on tripod",
		Lighting:               "natural",
		CroppedToPlant:         false,
		URL:                    "https://github.com/AlexOlsen/DeepWeeds",
	}
}
